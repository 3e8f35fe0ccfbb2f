package source

import (
	"context"

	"github.com/sani-e-zehra/book-rag/internal/core/domain"
)

// SampleSource is the last-resort fallback: a built-in excerpt so a fresh
// deployment answers something sensible before any real content arrives.
type SampleSource struct{}

func NewSampleSource() *SampleSource { return &SampleSource{} }

func (*SampleSource) Name() string { return "sample" }

func (*SampleSource) Fetch(context.Context) ([]domain.Document, error) {
	return []domain.Document{{
		Content: sampleContent,
		Source:  "sample-content",
		DocID:   "sample",
	}}, nil
}

const sampleContent = `
# Introduction to Physical AI & Humanoid Robotics

Physical AI represents the intersection of artificial intelligence and physical systems,
enabling robots and autonomous systems to interact with the real world. Unlike purely
software-based AI, Physical AI must account for real-world physics, uncertainty, and
the complexities of physical interaction.

## Key Concepts

### Physical AI Fundamentals
Physical AI systems combine:
- Sensor perception and processing
- Real-time decision making
- Actuator control and manipulation
- Adaptation to physical constraints

### Humanoid Robotics
Humanoid robots are designed to mimic human form and function, enabling them to:
- Navigate human environments
- Use human tools and interfaces
- Interact naturally with people
- Perform tasks designed for human capabilities

## Applications

Physical AI and humanoid robotics have applications in:
- Manufacturing and industrial automation
- Healthcare and assistance
- Search and rescue operations
- Space exploration
- Education and research

## Challenges

Key challenges in Physical AI include:
- Real-time processing requirements
- Safety and reliability
- Energy efficiency
- Robustness to uncertainty
- Integration of multiple subsystems
`
