package graphrag

// Category identifies one of the fixed content classes, each backed by its
// own vector index in the graph.
type Category int

const (
	CategoryMoments Category = iota
	CategoryReflections
	CategoryNotes
	CategoryPatterns
	CategoryValues
)

// AllCategories lists every category in declaration order. Availability maps
// are always walked in this order, never in map iteration order.
var AllCategories = []Category{
	CategoryMoments,
	CategoryReflections,
	CategoryNotes,
	CategoryPatterns,
	CategoryValues,
}

// IndexConfig maps a category onto its storage shape in the graph. Every
// category has exactly one content property and one embedding property.
type IndexConfig struct {
	IndexName         string
	NodeLabel         string
	ContentProperty   string
	EmbeddingProperty string
	DisplayName       string
	Description       string
}

var indexConfigs = map[Category]IndexConfig{
	CategoryMoments: {
		IndexName:         "therapy_moments_index",
		NodeLabel:         "Moment",
		ContentProperty:   "context",
		EmbeddingProperty: "context_embedding",
		DisplayName:       "Therapy Moments",
		Description:       "Therapy session contexts and situations",
	},
	CategoryReflections: {
		IndexName:         "user_reflections_index",
		NodeLabel:         "Reflection",
		ContentProperty:   "content",
		EmbeddingProperty: "content_embedding",
		DisplayName:       "User Reflections",
		Description:       "User insights and realizations",
	},
	CategoryNotes: {
		IndexName:         "therapist_notes_index",
		NodeLabel:         "PersonaNote",
		ContentProperty:   "content",
		EmbeddingProperty: "content_embedding",
		DisplayName:       "Therapist Notes",
		Description:       "Therapist observations and notes",
	},
	CategoryPatterns: {
		IndexName:         "behavior_patterns_index",
		NodeLabel:         "Pattern",
		ContentProperty:   "description",
		EmbeddingProperty: "description_embedding",
		DisplayName:       "Behavior Patterns",
		Description:       "Behavioral and emotional patterns",
	},
	CategoryValues: {
		IndexName:         "user_values_index",
		NodeLabel:         "Value",
		ContentProperty:   "description",
		EmbeddingProperty: "description_embedding",
		DisplayName:       "User Values",
		Description:       "User values and motivations",
	},
}

// Config returns the storage mapping for the category
func (c Category) Config() IndexConfig {
	return indexConfigs[c]
}

// DisplayName returns the user-facing name for the category
func (c Category) DisplayName() string {
	return indexConfigs[c].DisplayName
}

// String implements fmt.Stringer using the index name
func (c Category) String() string {
	return indexConfigs[c].IndexName
}
