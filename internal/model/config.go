package model

import "time"

// Config is the full tool configuration. The scoring weights, window
// boundaries and thresholds are hand-tuned values without a documented
// empirical basis, so they live here as configuration with built-in
// defaults rather than as fixed constants; validate against labeled data before
// changing them.
type Config struct {
	Scoring     ScoringConfig     `yaml:"scoring" mapstructure:"scoring"`
	Episode     EpisodeConfig     `yaml:"episode" mapstructure:"episode"`
	Disclosure  DisclosureConfig  `yaml:"disclosure" mapstructure:"disclosure"`
	Dict        DictConfig        `yaml:"dict" mapstructure:"dict"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// ScoringConfig parameterizes the dispute scoring model
type ScoringConfig struct {
	PhaseWeight     float64 `yaml:"phase_weight" mapstructure:"phase_weight"`
	DiagnosisWeight float64 `yaml:"diagnosis_weight" mapstructure:"diagnosis_weight"`
	SeverityWeight  float64 `yaml:"severity_weight" mapstructure:"severity_weight"`
	ChainWeight     float64 `yaml:"chain_weight" mapstructure:"chain_weight"`

	PreContractPhaseWeight   float64 `yaml:"pre_contract_phase_weight" mapstructure:"pre_contract_phase_weight"`
	WaitingPeriodPhaseWeight float64 `yaml:"waiting_period_phase_weight" mapstructure:"waiting_period_phase_weight"`
	CoveredPeriodPhaseWeight float64 `yaml:"covered_period_phase_weight" mapstructure:"covered_period_phase_weight"`

	SurgerySeverity   float64 `yaml:"surgery_severity" mapstructure:"surgery_severity"`
	AdmissionSeverity float64 `yaml:"admission_severity" mapstructure:"admission_severity"`
	TreatmentSeverity float64 `yaml:"treatment_severity" mapstructure:"treatment_severity"`

	PotentialDutyThreshold float64 `yaml:"potential_duty_threshold" mapstructure:"potential_duty_threshold"`
	ViolationDutyThreshold float64 `yaml:"violation_duty_threshold" mapstructure:"violation_duty_threshold"`

	RiskFactorRoleThreshold float64 `yaml:"risk_factor_role_threshold" mapstructure:"risk_factor_role_threshold"`
	EtiologyRoleThreshold   float64 `yaml:"etiology_role_threshold" mapstructure:"etiology_role_threshold"`
	ClaimCoreRoleThreshold  float64 `yaml:"claim_core_role_threshold" mapstructure:"claim_core_role_threshold"`
}

// EpisodeConfig parameterizes episode grouping
type EpisodeConfig struct {
	WindowDays int `yaml:"window_days" mapstructure:"window_days"`
}

// DisclosureConfig parameterizes disclosure risk aggregation
type DisclosureConfig struct {
	BaseRisk           map[string]float64 `yaml:"base_risk" mapstructure:"base_risk"`
	SeverityMultiplier map[string]float64 `yaml:"severity_multiplier" mapstructure:"severity_multiplier"`
	CategoryWeights    map[string]float64 `yaml:"category_weights" mapstructure:"category_weights"`
	RuleAdjustment     map[string]float64 `yaml:"rule_adjustment" mapstructure:"rule_adjustment"`

	RecencyDays  int     `yaml:"recency_days" mapstructure:"recency_days"`
	RecencyBonus float64 `yaml:"recency_bonus" mapstructure:"recency_bonus"`

	HighRiskThreshold   float64 `yaml:"high_risk_threshold" mapstructure:"high_risk_threshold"`
	MediumRiskThreshold float64 `yaml:"medium_risk_threshold" mapstructure:"medium_risk_threshold"`
	LowRiskThreshold    float64 `yaml:"low_risk_threshold" mapstructure:"low_risk_threshold"`

	RecommendThreshold float64 `yaml:"recommend_threshold" mapstructure:"recommend_threshold"`
	DetailedAnalysis   bool    `yaml:"detailed_analysis" mapstructure:"detailed_analysis"`
	RecentWindowDays   int     `yaml:"recent_window_days" mapstructure:"recent_window_days"`
}

// DictConfig configures dictionary loading and the lookup cache
type DictConfig struct {
	Path         string        `yaml:"path" mapstructure:"path"` // Optional YAML override file
	CacheTTL     time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	CacheCleanup time.Duration `yaml:"cache_cleanup" mapstructure:"cache_cleanup"`
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LLMConfig configures the optional narrative provider. Disabled unless
// a provider is set; the narrative never affects analysis results.
type LLMConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"` // "openai", "ollama", "" (disabled)
	Model             string  `yaml:"model" mapstructure:"model"`
	APIKey            string  `yaml:"-" mapstructure:"api_key"` // Never written to config files
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSeconds    int     `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	MaxTokens         int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	StrictDates       bool    `yaml:"strict_dates" mapstructure:"strict_dates"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// LoggingConfig controls structured logging
type LoggingConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // "text" or "json"
	Level  string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the built-in defaults. Numeric values match the
// documented scoring model exactly; tests pin them.
func DefaultConfig() *Config {
	return &Config{
		Scoring: ScoringConfig{
			PhaseWeight:     0.35,
			DiagnosisWeight: 0.35,
			SeverityWeight:  0.20,
			ChainWeight:     0.10,

			PreContractPhaseWeight:   0.7,
			WaitingPeriodPhaseWeight: 1.0,
			CoveredPeriodPhaseWeight: 0.5,

			SurgerySeverity:   0.5,
			AdmissionSeverity: 0.3,
			TreatmentSeverity: 0.2,

			PotentialDutyThreshold: 0.5,
			ViolationDutyThreshold: 0.8,

			RiskFactorRoleThreshold: 0.4,
			EtiologyRoleThreshold:   0.6,
			ClaimCoreRoleThreshold:  0.8,
		},
		Episode: EpisodeConfig{
			WindowDays: 30,
		},
		Disclosure: DisclosureConfig{
			BaseRisk: map[string]float64{
				string(ItemDiagnosis):       0.7,
				string(ItemProcedure):       0.6,
				string(ItemMedication):      0.5,
				string(ItemHospitalization): 0.8,
				string(ItemEmergency):       0.75,
			},
			SeverityMultiplier: map[string]float64{
				SeverityHigh:   1.2,
				SeverityMedium: 1.0,
				SeverityLow:    0.8,
			},
			CategoryWeights: map[string]float64{
				"cancer":          1.3,
				"cardiovascular":  1.2,
				"cerebrovascular": 1.2,
				"chronic":         1.1,
			},
			RuleAdjustment: map[string]float64{
				SeverityHigh:   0.15,
				SeverityMedium: 0.10,
				SeverityLow:    0.05,
			},
			RecencyDays:  30,
			RecencyBonus: 0.1,

			HighRiskThreshold:   0.8,
			MediumRiskThreshold: 0.6,
			LowRiskThreshold:    0.3,

			RecommendThreshold: 0.6,
			DetailedAnalysis:   true,
			RecentWindowDays:   90,
		},
		Dict: DictConfig{
			CacheTTL:     30 * time.Minute,
			CacheCleanup: 10 * time.Minute,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		LLM: LLMConfig{
			Provider:          "",
			TimeoutSeconds:    30,
			MaxTokens:         1000,
			StrictDates:       true,
			RequestsPerSecond: 1,
			Burst:             2,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
		Logging: LoggingConfig{
			Format: "text",
			Level:  "info",
		},
	}
}
