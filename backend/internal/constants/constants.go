package constants

// Persona constants
const (
	// DefaultPersona is the persona messages route to when no other matches
	DefaultPersona = "Sage"
)

// Retrieval constants
const (
	// DefaultTopK is the number of nearest items pulled from a vector index
	DefaultTopK = 5

	// MaxGroundingItems is the number of retrieved items passed to the
	// generation model as grounding context for a single category
	MaxGroundingItems = 3

	// MinGroundingChars is the shortest item content worth grounding on;
	// anything under this is treated as noise
	MinGroundingChars = 10

	// MinSynthesisChars is the shortest synthesis output accepted before the
	// deterministic fallback kicks in
	MinSynthesisChars = 50
)

// Generation constants
const (
	// SynthesisTemperature keeps fusion and classification calls focused
	SynthesisTemperature = 0.1

	// PersonaTemperature allows more natural free-form persona replies
	PersonaTemperature = 0.8

	// DefaultMaxTokens bounds a single generation call
	DefaultMaxTokens = 1000

	// PersonaMaxTokens bounds a persona chat reply
	PersonaMaxTokens = 500
)
