package archive

import "github.com/SpyglassRealty/AgentHubPortal-sub001/internal/risk"

// Archive stores computed profiles for offline analysis.
type Archive interface {
	Append(requestID string, p risk.Profile)
	Close()
}

// Nop discards everything. It is used when no archive file is configured.
type Nop struct{}

func (Nop) Append(string, risk.Profile) {}

func (Nop) Close() {}
