package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server       Server
	Database     Database
	Gemini       Gemini
	QuestionBank QuestionBank
	Scoring      Scoring
	Insight      Insight
}

type Server struct {
	Port string
}

type Database struct {
	Driver   string // "postgres" or "sqlite"
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	Path     string // sqlite file, ":memory:" allowed
}

type Gemini struct {
	APIKey string
	Model  string
}

type QuestionBank struct {
	Dir        string
	RetakeDays map[string]int
}

// Scoring mirrors scoring.Policy so the config package stays free of
// internal imports.
type Scoring struct {
	SecondaryGap              float64
	StraightLineVariance      float64
	StraightLineMinStatements int
	MidlineTolerance          float64
	FastResponseMs            int64
	SlowResponseMs            int64
	HealthyVarianceLow        float64
	HealthyVarianceHigh       float64
	MaxVariance               float64
	InconsistentTimingCV      float64
	TimingMinResponses        int
}

type Insight struct {
	Timeout time.Duration
}

var assessmentTypes = []string{"attachment_style", "relationship_patterns", "dating_style"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_PATH", "heartscan.db")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("INSIGHT_TIMEOUT", "45s")

	v.SetDefault("SCORING_SECONDARY_GAP", 15.0)
	v.SetDefault("SCORING_STRAIGHT_LINE_VARIANCE", 0.25)
	v.SetDefault("SCORING_STRAIGHT_LINE_MIN_STATEMENTS", 5)
	v.SetDefault("SCORING_MIDLINE_TOLERANCE", 0.5)
	v.SetDefault("SCORING_FAST_RESPONSE_MS", 1500)
	v.SetDefault("SCORING_SLOW_RESPONSE_MS", 60000)
	v.SetDefault("SCORING_HEALTHY_VARIANCE_LOW", 0.75)
	v.SetDefault("SCORING_HEALTHY_VARIANCE_HIGH", 2.0)
	v.SetDefault("SCORING_MAX_VARIANCE", 4.0)
	v.SetDefault("SCORING_INCONSISTENT_TIMING_CV", 1.0)
	v.SetDefault("SCORING_TIMING_MIN_RESPONSES", 5)
}

func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	var config Config

	config.Server.Port = v.GetString("SERVER_PORT")

	config.Database.Driver = strings.ToLower(v.GetString("DATABASE_DRIVER"))
	config.Database.Host = v.GetString("DATABASE_HOST")
	config.Database.Port = v.GetString("DATABASE_PORT")
	config.Database.User = v.GetString("DATABASE_USER")
	config.Database.Password = v.GetString("DATABASE_PASSWORD")
	config.Database.Name = v.GetString("DATABASE_NAME")
	config.Database.Path = v.GetString("DATABASE_PATH")

	config.Gemini.APIKey = v.GetString("GEMINI_API_KEY")
	config.Gemini.Model = v.GetString("GEMINI_MODEL")

	config.QuestionBank.Dir = v.GetString("QUESTION_BANK_DIR")
	config.QuestionBank.RetakeDays = make(map[string]int)
	for _, typ := range assessmentTypes {
		key := "RETAKE_DAYS_" + strings.ToUpper(typ)
		if v.IsSet(key) {
			config.QuestionBank.RetakeDays[typ] = v.GetInt(key)
		}
	}

	config.Scoring = Scoring{
		SecondaryGap:              v.GetFloat64("SCORING_SECONDARY_GAP"),
		StraightLineVariance:      v.GetFloat64("SCORING_STRAIGHT_LINE_VARIANCE"),
		StraightLineMinStatements: v.GetInt("SCORING_STRAIGHT_LINE_MIN_STATEMENTS"),
		MidlineTolerance:          v.GetFloat64("SCORING_MIDLINE_TOLERANCE"),
		FastResponseMs:            v.GetInt64("SCORING_FAST_RESPONSE_MS"),
		SlowResponseMs:            v.GetInt64("SCORING_SLOW_RESPONSE_MS"),
		HealthyVarianceLow:        v.GetFloat64("SCORING_HEALTHY_VARIANCE_LOW"),
		HealthyVarianceHigh:       v.GetFloat64("SCORING_HEALTHY_VARIANCE_HIGH"),
		MaxVariance:               v.GetFloat64("SCORING_MAX_VARIANCE"),
		InconsistentTimingCV:      v.GetFloat64("SCORING_INCONSISTENT_TIMING_CV"),
		TimingMinResponses:        v.GetInt("SCORING_TIMING_MIN_RESPONSES"),
	}

	config.Insight.Timeout = v.GetDuration("INSIGHT_TIMEOUT")

	log.Info().
		Str("port", config.Server.Port).
		Str("dbDriver", config.Database.Driver).
		Bool("geminiEnabled", config.Gemini.APIKey != "").
		Str("questionBankDir", config.QuestionBank.Dir).
		Msg("Config loaded")
	return &config
}
