package config

import (
	"github.com/spf13/viper"
)

// The services run in EKS; DB connection variables, AWS settings and the
// queue URLs are injected as environment variables on the pod. Local
// development points everything at docker-compose (Postgres + LocalStack).

type Config struct {
	DBDriver            string `mapstructure:"DB_DRIVER"`
	DBHost              string `mapstructure:"DB_HOST"`
	DBPort              string `mapstructure:"DB_PORT"`
	DBUser              string `mapstructure:"DB_USER"`
	DBPassword          string `mapstructure:"DB_PASSWORD"`
	DBName              string `mapstructure:"DB_NAME"`
	SQLitePath          string `mapstructure:"SQLITE_PATH"`
	ServerPort          string `mapstructure:"SERVER_PORT"`
	AWSRegion           string `mapstructure:"AWS_REGION"`
	AWSEndpoint         string `mapstructure:"AWS_ENDPOINT"`
	PayrollSQSQueueURL  string `mapstructure:"PAYROLL_SQS_QUEUE_URL"`
	EmailSQSQueueURL    string `mapstructure:"EMAIL_SQS_QUEUE_URL"`
	EvidenceBucket      string `mapstructure:"EVIDENCE_BUCKET"`
	HRAPIURL            string `mapstructure:"HR_API_URL"`
	EmailSender         string `mapstructure:"EMAIL_SENDER"`
	EmailDomain         string `mapstructure:"EMAIL_DOMAIN"`
	OTLPEndpoint        string `mapstructure:"OTLP_ENDPOINT"`
	DefaultRoleCategory string `mapstructure:"DEFAULT_ROLE_CATEGORY"`
	IsLocalDev          bool   `mapstructure:"IS_LOCAL_DEV"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("DB_DRIVER", "pgx")
	viper.SetDefault("DB_HOST", "db")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "control_horario")
	viper.SetDefault("SQLITE_PATH", "file:control_horario.db?_fk=1")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("AWS_REGION", "eu-west-1")
	viper.SetDefault("AWS_ENDPOINT", "http://localstack:4566")
	viper.SetDefault("PAYROLL_SQS_QUEUE_URL", "http://localstack:4566/000000000000/payroll-queue")
	viper.SetDefault("EMAIL_SQS_QUEUE_URL", "http://localstack:4566/000000000000/payslip-email-queue")
	viper.SetDefault("EVIDENCE_BUCKET", "odometer-evidence")
	viper.SetDefault("HR_API_URL", "http://localhost:8081/")
	viper.SetDefault("EMAIL_SENDER", "nominas@control-horario.local")
	viper.SetDefault("EMAIL_DOMAIN", "empresa.local")
	viper.SetDefault("OTLP_ENDPOINT", "jaeger:4317")
	viper.SetDefault("DEFAULT_ROLE_CATEGORY", "driver")
	viper.SetDefault("IS_LOCAL_DEV", false)

	// Read in environment variables that match the keys.
	viper.AutomaticEnv()

	err = viper.Unmarshal(&config)
	return
}
