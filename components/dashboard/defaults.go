package dashboard

func floatPtr(v float64) *float64 { return &v }

// CounterRanges is the fallback range set for counter widgets when the payload omits one.
var CounterRanges = CategorySet{
	{Key: "DY", Label: "Yesterday"},
	{Key: "DT", Label: "Today"},
	{Key: "DTM", Label: "Tomorrow"},
}

var (
	sleepinessLevels = []string{
		"Abnormally sleepy",
		"Average Daytime sleepiness",
		"Excessively sleepy",
		"Extremely excessively sleepy",
	}
	sleepQuality = []string{"Very Good", "Fairly Good", "Fairly Bad", "Very Bad"}
	alertness    = []string{
		"Extremely alert",
		"Very alert",
		"Alert",
		"Rather alert",
		"Neither alert nor sleepy",
		"Some signs of sleepiness",
		"Sleepy, but no effort to keep awake",
		"Sleepy, but some effort to keep awake",
		"Very sleepy, great effort to keep awake",
		"Extremely sleepy, can not keep awake",
	}
	osaRisk     = []string{"Low risk of OSA", "Moderate risk of OSA", "High risk of OSA"}
	osaColors   = []string{"#1E88E5", "#FDD835", "#E53935"}
	chronotypes = []string{
		"Definitely Morning Type",
		"Moderately Morning Type",
		"Neither Type",
		"Moderately Evening Type",
		"Definitely Evening Type",
	}
	conditions  = []string{"High Blood Pressure", "Cholesterol", "Thyroid", "Heart Disease"}
	answerYesNo = []string{"Yes", "No"}
)

// Palettes are built per definition so no two widgets share a backing array.
func pieColors() []string { return []string{"#43A047", "#5E35B1", "#FB8C00", "#E53935"} }
func compareColors() []string { return []string{"#1E88E5", "#D81B60", "#8E24AA", "#00897B"} }

func counterDefinition(code, name, key string) WidgetDefinition {
	return WidgetDefinition{
		Code:       code,
		Name:       name,
		Source:     SourceCounter,
		Endpoint:   key,
		Categories: CounterRanges,
		Chart:      ChartSpec{Kind: ChartCounter, Title: name},
	}
}

var defaultWidgetDefinitions = []WidgetDefinition{
	counterDefinition("summary", "Summary", "summary"),
	counterDefinition("overdue", "Overdue", "overdue"),
	counterDefinition("issues", "Issues", "issues"),
	counterDefinition("features", "Features", "features"),
	{
		Code:        "sleepiness_distribution",
		Name:        "Sleepiness Distribution",
		Description: "Epworth sleepiness levels per demographic",
		Source:      SourceSurvey,
		Endpoint:    "getdata",
		Categories:  Demographics,
		Fill:        FillEmpty,
		Chart: ChartSpec{
			Kind:   ChartPie,
			Title:  "Distribution of Sleepiness Levels",
			Labels: sleepinessLevels,
			Colors: pieColors(),
			Legend: "bottom",
		},
	},
	{
		Code:        "sleep_quality",
		Name:        "Sleep Quality",
		Description: "Self-reported sleep quality",
		Source:      SourceSurvey,
		Endpoint:    "getdata1",
		Categories:  Demographics,
		Fill:        FillEmpty,
		Chart: ChartSpec{
			Kind:           ChartPolarArea,
			Title:          "Sleep Quality Distribution",
			Labels:         sleepQuality,
			Colors:         pieColors(),
			Legend:         "bottom",
			DataLabels:     true,
			LabelFormatter: "percent",
		},
	},
	{
		Code:        "karolinska_scale",
		Name:        "Karolinska Sleepiness Scale",
		Description: "Alertness levels and their frequencies",
		Source:      SourceSurvey,
		Endpoint:    "getdata2",
		Categories:  Demographics,
		Fill:        FillEmpty,
		Span:        4,
		Chart: ChartSpec{
			Kind:       ChartLine,
			Title:      "Karolinska Sleepiness Scale",
			Subtitle:   "Line Graph of Alertness Levels and Their Frequencies",
			SeriesName: "Sleepiness Scale",
			Labels:     alertness,
			Legend:     "none",
			DataLabels: true,
			Smooth:     true,
		},
	},
	{
		Code:        "insomnia_severity",
		Name:        "Insomnia Severity",
		Description: "Insomnia questionnaire responses",
		Source:      SourceSurvey,
		Endpoint:    "getdata3",
		Categories:  Demographics,
		Fill:        FillEmpty,
		Chart: ChartSpec{
			Kind:       ChartBar,
			Title:      "Insomnia Severity",
			SeriesName: "Responses",
			Labels:     []string{"No insomnia", "Subthreshold", "Moderate", "Severe"},
			Legend:     "none",
			YAxisMin:   floatPtr(0),
		},
	},
	{
		Code:        "osa_risk",
		Name:        "OSA Risk",
		Description: "STOP-Bang obstructive sleep apnea risk",
		Source:      SourceSurvey,
		Endpoint:    "getdata4",
		Categories:  Demographics,
		Fill:        FillEmpty,
		Chart: ChartSpec{
			Kind:        ChartBar,
			Title:       "Risk Level",
			SeriesName:  "Respondents",
			Labels:      osaRisk,
			PointColors: osaColors,
			Legend:      "none",
			YAxisMin:    floatPtr(0),
		},
	},
	{
		Code:        "chronotype",
		Name:        "Chronotype",
		Description: "Morningness-eveningness questionnaire",
		Source:      SourceSurvey,
		Endpoint:    "getdata5",
		Categories:  Demographics,
		Fill:        FillEmpty,
		Span:        4,
		Chart: ChartSpec{
			Kind:       ChartBar,
			Title:      "Frequency",
			SeriesName: "Respondents",
			Labels:     chronotypes,
			Legend:     "none",
			YAxisMin:   floatPtr(0),
		},
	},
	{
		Code:        "disease_comparison",
		Name:        "Disease Comparison",
		Description: "Medical conditions compared across demographics",
		Source:      SourceSurvey,
		Endpoint:    "getdata6",
		Categories:  Demographics,
		Fill:        FillZeros,
		Span:        4,
		Chart: ChartSpec{
			Kind:     ChartBar,
			Layout:   LayoutComparison,
			Title:    "Questionnaire on Lifestyle and Medical Conditions",
			Subtitle: "Disease Comparison",
			Labels:   conditions,
			Colors:   compareColors(),
			Legend:   "bottom",
			YAxisMin: floatPtr(0),
		},
	},
	{
		Code:        "smoking",
		Name:        "Smoking",
		Description: "Respondents who smoke",
		Source:      SourceSurvey,
		Endpoint:    "getdata7",
		Categories:  Demographics,
		Fill:        FillEmpty,
		Chart: ChartSpec{
			Kind:   ChartPie,
			Title:  "Smoking",
			Labels: answerYesNo,
			Colors: pieColors(),
			Legend: "bottom",
		},
	},
	{
		Code:        "alcohol",
		Name:        "Alcohol",
		Description: "Respondents who drink alcohol",
		Source:      SourceSurvey,
		Endpoint:    "getdata8",
		Categories:  Demographics,
		Fill:        FillEmpty,
		Chart: ChartSpec{
			Kind:   ChartPie,
			Title:  "Alcohol Consumption",
			Labels: answerYesNo,
			Colors: pieColors(),
			Legend: "bottom",
		},
	},
	{
		Code:        "screen_time",
		Name:        "Screen Time",
		Description: "Screen use before sleep",
		Source:      SourceSurvey,
		Endpoint:    "getdata9",
		Categories:  Demographics,
		Fill:        FillEmpty,
		Chart: ChartSpec{
			Kind:           ChartPolarArea,
			Title:          "Screen Time Before Sleep",
			Labels:         []string{"Never", "Rarely", "Sometimes", "Always"},
			Colors:         pieColors(),
			Legend:         "bottom",
			DataLabels:     true,
			LabelFormatter: "percent",
		},
	},
	{
		Code:        "caffeine",
		Name:        "Caffeine",
		Description: "Caffeine intake after noon",
		Source:      SourceSurvey,
		Endpoint:    "getdata10",
		Categories:  Demographics,
		Fill:        FillEmpty,
		Chart: ChartSpec{
			Kind:           ChartPolarArea,
			Title:          "Caffeine Intake",
			Labels:         []string{"None", "One cup", "Two cups", "Three or more"},
			Colors:         pieColors(),
			Legend:         "bottom",
			DataLabels:     true,
			LabelFormatter: "percent",
		},
	},
	{
		Code:        "diabetes",
		Name:        "Diabetes",
		Description: "Diagnosed diabetes",
		Source:      SourceSurvey,
		Endpoint:    "getdata11",
		Categories:  Demographics,
		Fill:        FillEmpty,
		Chart: ChartSpec{
			Kind:       ChartBar,
			Title:      "Diabetes",
			SeriesName: "Respondents",
			Labels:     answerYesNo,
			Legend:     "none",
			YAxisMin:   floatPtr(0),
		},
	},
	{
		Code:        "cancer",
		Name:        "Cancer",
		Description: "Cancer diagnoses across demographics",
		Source:      SourceSurvey,
		Endpoint:    "getdata12",
		Categories:  Demographics,
		Fill:        FillZeros,
		Chart: ChartSpec{
			Kind:   ChartPie,
			Layout: LayoutAggregate,
			Title:  "Cancer",
			Colors: pieColors(),
			Legend: "bottom",
		},
	},
}

// DefaultCarousel is the static Home tab carousel.
var DefaultCarousel = []CarouselItem{
	{Name: "Aya Bouchiha", Description: "Full Stack Web Developer"},
	{Name: "John Doe", Description: "Author"},
	{Name: "Pitsu Coma", Description: "Math Student"},
}

// DefaultWidgetDefinitions exposes the built-in widget catalog in grid order.
func DefaultWidgetDefinitions() []WidgetDefinition {
	defs := make([]WidgetDefinition, len(defaultWidgetDefinitions))
	for i, def := range defaultWidgetDefinitions {
		defs[i] = def.clone()
	}
	return defs
}
