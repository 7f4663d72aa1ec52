package server

import (
	"fmt"
	"time"

	"github.com/codeduel-vn/codeduel/internal/aws/storage"
	"github.com/codeduel-vn/codeduel/internal/matchmaking"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string
	LogLevel string

	CountdownSeconds int
	QueueTickPeriod  time.Duration
	Matchmaking      matchmaking.Config

	JudgeTimeBudget time.Duration
	JudgeMemoryMB   int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AwsRegion         string
	CognitoUserPoolId string
	Tables            storage.Tables
}

func NewConfig() Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs/server")
	viper.AddConfigPath(".")

	viper.SetDefault("Server.Port", "8080")
	viper.SetDefault("Server.LogLevel", "info")
	viper.SetDefault("Match.CountdownSeconds", 5)
	viper.SetDefault("Matchmaking.TickPeriod", "2s")
	viper.SetDefault("Matchmaking.BaseTolerance", 100.0)
	viper.SetDefault("Matchmaking.WidenStep", 50.0)
	viper.SetDefault("Matchmaking.WidenEvery", "10s")
	viper.SetDefault("Judge.TimeBudget", "5s")
	viper.SetDefault("Judge.MemoryLimitMB", 256)
	viper.SetDefault("Redis.Addr", "localhost:6379")
	viper.SetDefault("Redis.DB", 0)

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %s", err))
	}
	viper.AutomaticEnv()

	return Config{
		Port:             viper.GetString("Server.Port"),
		LogLevel:         viper.GetString("Server.LogLevel"),
		CountdownSeconds: viper.GetInt("Match.CountdownSeconds"),
		QueueTickPeriod:  viper.GetDuration("Matchmaking.TickPeriod"),
		Matchmaking: matchmaking.Config{
			BaseTolerance: viper.GetFloat64("Matchmaking.BaseTolerance"),
			WidenStep:     viper.GetFloat64("Matchmaking.WidenStep"),
			WidenEvery:    viper.GetDuration("Matchmaking.WidenEvery"),
		},
		JudgeTimeBudget:   viper.GetDuration("Judge.TimeBudget"),
		JudgeMemoryMB:     viper.GetInt("Judge.MemoryLimitMB"),
		RedisAddr:         viper.GetString("Redis.Addr"),
		RedisPassword:     viper.GetString("Redis.Password"),
		RedisDB:           viper.GetInt("Redis.DB"),
		AwsRegion:         viper.GetString("AWS_REGION"),
		CognitoUserPoolId: viper.GetString("COGNITO_USER_POOL_ID"),
		Tables: storage.Tables{
			UserRatings: viper.GetString("Tables.UserRatings"),
			Problems:    viper.GetString("Tables.Problems"),
			Matches:     viper.GetString("Tables.Matches"),
			Submissions: viper.GetString("Tables.Submissions"),
			Replays:     viper.GetString("Tables.Replays"),
		},
	}
}
