package models

// MemoryType classifies a SenpaiMemory.
type MemoryType string

const (
	MemoryInsideJoke MemoryType = "inside_joke"
	MemoryRunningBit MemoryType = "running_bit"
	MemoryPreference MemoryType = "preference"
	MemoryMilestone  MemoryType = "milestone"
)

// SenpaiMemory is free-form group context used to build the persona prompt.
// Enshrining a message records a milestone memory.
type SenpaiMemory struct {
	ID             string
	GroupID        string
	MemoryType     MemoryType
	Content        string
	CreatedAt      int64
	RelevanceScore float64
}
