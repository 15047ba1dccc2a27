package config

import (
	"fmt"
	"os"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート

	JWTSecret string // JWT署名シークレット

	GoEnv string // dev/prod

	AMQPURL   string // RabbitMQ接続先（空なら注文イベント発行なし）
	AMQPQueue string // 注文イベントのキュー名
}

// Loadは環境変数から設定を読む。DB接続情報はinfra/dbが直接envを見る。
func Load() (Config, error) {
	cfg := Config{
		Port:      os.Getenv("PORT"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		GoEnv:     os.Getenv("GO_ENV"),
		AMQPURL:   os.Getenv("AMQP_URL"),
		AMQPQueue: os.Getenv("AMQP_QUEUE"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}

	if cfg.AMQPQueue == "" {
		cfg.AMQPQueue = "order-events"
	}

	return cfg, nil
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}
