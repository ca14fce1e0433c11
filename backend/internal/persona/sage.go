package persona

import (
	"fmt"
	"strings"

	"sage-clone/backend/internal/constants"
	"sage-clone/backend/internal/graphrag"
)

// directivePatterns maps directive phrasing onto gentler alternatives.
// Order matters: longer phrases are checked before their prefixes.
var directivePatterns = []struct {
	directive string
	gentle    string
}{
	{"Here's what you should do", "What feels right for you"},
	{"You should", "You might find"},
	{"You need to", "You could explore"},
	{"You must", "You might consider"},
	{"I recommend", "I wonder if"},
	{"Try this", "What if you"},
}

// BuildSystemPrompt renders the Sage system prompt with the user's memory
// context woven in
func BuildSystemPrompt(ownerName string, memory map[graphrag.Category][]string) string {
	if ownerName == "" {
		ownerName = "Friend"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("You are %s, a nurturing therapeutic presence. ", constants.DefaultPersona))
	b.WriteString("You hold space for users to reflect gently on their emotional world. ")
	b.WriteString("Do not advise or instruct. Mirror and validate.\n\n")
	b.WriteString("User Context:\n")
	b.WriteString("- Name: " + ownerName + "\n")

	for _, category := range graphrag.AllCategories {
		contents, ok := memory[category]
		if !ok || len(contents) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("- %s: %s\n", category.DisplayName(), strings.Join(contents, "; ")))
	}

	b.WriteString("\nRespond with warmth and gentle curiosity. Help them explore what's beneath the surface.")
	return b.String()
}

// SoftenTone rewrites directive phrasing that slipped through into Sage's
// non-directive register
func SoftenTone(response string) string {
	softened := response
	for _, p := range directivePatterns {
		if strings.Contains(strings.ToLower(softened), strings.ToLower(p.directive)) {
			softened = replaceInsensitive(softened, p.directive, p.gentle)
		}
	}
	return softened
}

func replaceInsensitive(s, old, new string) string {
	lower := strings.ToLower(s)
	oldLower := strings.ToLower(old)

	var b strings.Builder
	for {
		idx := strings.Index(lower, oldLower)
		if idx < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:idx])
		b.WriteString(new)
		s = s[idx+len(old):]
		lower = lower[idx+len(old):]
	}
}

// FallbackResponse produces a pattern-based reply when the LLM is unavailable
func FallbackResponse(userMessage string) string {
	lower := strings.ToLower(userMessage)

	switch {
	case containsAny(lower, "overwhelmed", "stressed", "anxious"):
		return "That sounds like a lot to carry right now. " +
			"What would it feel like to set one small thing down, just for a moment?"
	case containsAny(lower, "sad", "sadness", "grief", "loss"):
		return "I can feel the weight of that sadness. " +
			"Sadness often holds such important truths. What is yours telling you?"
	case containsAny(lower, "stuck", "trapped", "can't move"):
		return "Being stuck can feel so heavy. Sometimes the way forward " +
			"isn't about moving at all, but about understanding what's holding us. " +
			"What do you sense beneath that stuckness?"
	case containsAny(lower, "angry", "frustrated", "mad"):
		return "That anger has something to say. Anger often protects something tender underneath. " +
			"What might it be guarding for you?"
	default:
		return fmt.Sprintf("I hear you saying: '%s'. "+
			"That sounds like something that carries weight for you. "+
			"Would you like to explore what's beneath the surface?", userMessage)
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
