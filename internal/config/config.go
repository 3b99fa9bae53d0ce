// Package config はアプリケーション設定の読み込みと検証を行います。
// 読み込み順 (後勝ち): デフォルト値 -> YAMLファイル (任意) -> .env -> 環境変数 (TODO_ プレフィックス)
package config

import (
	"fmt"
	"net/url"
	"time"
)

// 利用可能なストアドライバー
const (
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config はサービス全体の設定です。
type Config struct {
	Server ServerConfig `koanf:"server"`
	Log    LogConfig    `koanf:"log"`
	CORS   CORSConfig   `koanf:"cors"`
	Store  StoreConfig  `koanf:"store"`
	Mongo  MongoConfig  `koanf:"mongo"`
	MySQL  MySQLConfig  `koanf:"mysql"`
}

// ServerConfig はHTTPサーバーの設定です。
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr は "host:port" 形式のリッスンアドレスを返します。
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig は構造化ログの設定です。
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// CORSConfig はブラウザからのアクセス元の設定です。
type CORSConfig struct {
	AllowOrigins []string `koanf:"allow_origins"`
}

// StoreConfig はどの永続化バックエンドを使うかを決めます。
type StoreConfig struct {
	Driver string `koanf:"driver"`
}

// MongoConfig はドキュメントストアの接続設定です。
type MongoConfig struct {
	URI            string        `koanf:"uri"`
	Database       string        `koanf:"database"`
	Collection     string        `koanf:"collection"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// MySQLConfig はMySQLバックエンドの接続設定です。
type MySQLConfig struct {
	User string `koanf:"user"`
	Pass string `koanf:"pass"`
	Host string `koanf:"host"`
	Port string `koanf:"port"`
	Name string `koanf:"name"`
}

// DSN はMySQL接続文字列 (DSN) を構築します。
func (m MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", m.User, m.Pass, m.Host, m.Port, m.Name)
}

// RedactedURI はログ出力用に認証情報を伏せたMongo URIを返します。
func (m MongoConfig) RedactedURI() string {
	u, err := url.Parse(m.URI)
	if err != nil || u.User == nil {
		return m.URI
	}
	u.User = url.User(u.User.Username())
	return u.String()
}
