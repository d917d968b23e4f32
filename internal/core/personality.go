package core

import "context"

type AgentPersonality struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Traits        map[string]float64 `json:"traits"`
	Values        []string           `json:"values"`
	Communication Communication      `json:"communication"`
}

type Communication struct {
	Style    string   `json:"style,omitempty"`
	Tone     string   `json:"tone,omitempty"`
	Patterns []string `json:"patterns,omitempty"`
}

func (p AgentPersonality) Clone() AgentPersonality {
	c := p
	c.Traits = make(map[string]float64, len(p.Traits))
	for k, v := range p.Traits {
		c.Traits[k] = v
	}
	c.Values = append([]string{}, p.Values...)
	c.Communication.Patterns = append([]string{}, p.Communication.Patterns...)
	return c
}

// PersonalityPatch is deep-merged into the stored profile. The profile id is never patchable.
type PersonalityPatch struct {
	Name          *string
	Description   *string
	Traits        map[string]float64
	Values        []string
	Communication *CommunicationPatch
}

type CommunicationPatch struct {
	Style    *string
	Tone     *string
	Patterns []string
}

// PersonalityService is the personality capability exposed to collaborators.
type PersonalityService interface {
	Get(ctx context.Context) (AgentPersonality, error)
	Update(ctx context.Context, patch PersonalityPatch) (AgentPersonality, error)
	UpdateTrait(ctx context.Context, name string, value float64) error
	AddValue(ctx context.Context, value string) error
	RemoveValue(ctx context.Context, value string) error
	UpdateCommunicationStyle(ctx context.Context, patch CommunicationPatch) error
}
