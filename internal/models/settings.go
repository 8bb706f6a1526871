package models

// DataSource selects which samples feed the analytics pipeline.
type DataSource string

const (
	DataSourceAll      DataSource = "all"
	DataSourceCurrent  DataSource = "current"
	DataSourceSelected DataSource = "selected"
)

// TimeRange bounds the samples and progress points considered.
type TimeRange string

const (
	TimeRangeWeek  TimeRange = "week"
	TimeRangeMonth TimeRange = "month"
	TimeRangeTerm  TimeRange = "term"
	TimeRangeYear  TimeRange = "year"
	TimeRangeAll   TimeRange = "all"
)

// IsValid reports whether the time range is supported.
func (r TimeRange) IsValid() bool {
	switch r {
	case TimeRangeWeek, TimeRangeMonth, TimeRangeTerm, TimeRangeYear, TimeRangeAll:
		return true
	default:
		return false
	}
}

// GroupBy selects the primary grouping of analytics results.
type GroupBy string

const (
	GroupByIntervention    GroupBy = "intervention"
	GroupByStudent         GroupBy = "student"
	GroupByLearningProfile GroupBy = "learningProfile"
	GroupByNone            GroupBy = "none"
)

// IsValid reports whether the grouping is supported.
func (g GroupBy) IsValid() bool {
	switch g {
	case GroupByIntervention, GroupByStudent, GroupByLearningProfile, GroupByNone:
		return true
	default:
		return false
	}
}

const (
	// MinSignificanceThreshold and MaxSignificanceThreshold bound the accepted alpha.
	MinSignificanceThreshold = 0.01
	MaxSignificanceThreshold = 0.10
	// DefaultSignificanceThreshold is used when no settings are stored.
	DefaultSignificanceThreshold = 0.05
)

// AnalyticsSettings is the persisted configuration of the intervention analytics view.
type AnalyticsSettings struct {
	Enabled               bool       `json:"enabled"`
	DataSource            DataSource `json:"dataSource" validate:"required,oneof=all current selected"`
	TimeRange             TimeRange  `json:"timeRange" validate:"required,oneof=week month term year all"`
	GroupBy               GroupBy    `json:"groupBy" validate:"required,oneof=intervention student learningProfile none"`
	ComparisonEnabled     bool       `json:"comparisonEnabled"`
	SignificanceThreshold float64    `json:"significanceThreshold" validate:"gte=0.01,lte=0.1"`
	AutomaticReports      bool       `json:"automaticReports"`
	SelectedInterventions []string   `json:"selectedInterventions" validate:"dive,required"`
}

// DefaultAnalyticsSettings returns the settings applied when none are stored.
func DefaultAnalyticsSettings() AnalyticsSettings {
	return AnalyticsSettings{
		Enabled:               true,
		DataSource:            DataSourceAll,
		TimeRange:             TimeRangeTerm,
		GroupBy:               GroupByIntervention,
		ComparisonEnabled:     true,
		SignificanceThreshold: DefaultSignificanceThreshold,
		SelectedInterventions: []string{},
	}
}
