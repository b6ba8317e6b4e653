package config

import "os"

type Config struct {
	Port                    string
	Env                     string
	ClientURL               string
	MongoURI                string
	MongoDatabase           string
	JWTSecret               string
	FirebaseCredentialsPath string
	MinioEndpoint           string
	MinioAccessKey          string
	MinioSecretKey          string
	MinioBucket             string
	MinioPublicURL          string
	MinioUseSSL             string
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "5000"),
		Env:                     getEnv("ENV", "development"),
		ClientURL:               getEnv("CLIENT_URL", "http://localhost:3000"),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "socialmedia"),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		MinioEndpoint:           getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey:          getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:          getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:             getEnv("MINIO_BUCKET", "social-media"),
		MinioPublicURL:          getEnv("MINIO_PUBLIC_URL", "http://127.0.0.1:9000"),
		MinioUseSSL:             getEnv("MINIO_USE_SSL", "false"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
