package config

const defaultServerPort = 8080

// defaults はデフォルトの設定値を返します。
func defaults() map[string]any {
	return map[string]any{
		"server.host":             "0.0.0.0",
		"server.port":             defaultServerPort,
		"server.read_timeout":     "5s",
		"server.write_timeout":    "10s",
		"server.shutdown_timeout": "15s",

		"log.level":  "info",
		"log.format": "json",

		"cors.allow_origins": []string{"http://localhost:3000"},

		"store.driver": DriverMongo,

		"mongo.uri":             "mongodb://localhost:27017",
		"mongo.database":        "todoapp",
		"mongo.collection":      "todos",
		"mongo.connect_timeout": "10s",

		"mysql.user": "root",
		"mysql.pass": "",
		"mysql.host": "127.0.0.1",
		"mysql.port": "3306",
		"mysql.name": "todoapp",
	}
}
