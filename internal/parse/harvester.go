package parse

import (
	"log/slog"
	"regexp"
	"strconv"
	"time"
)

// ActivityMessage is one observed farming attempt, extracted from a single
// harvester log line. Values are immutable once parsed.
type ActivityMessage struct {
	Timestamp          time.Time
	EligiblePlotsCount int
	ChallengeHash      string
	FoundProofsCount   int
	SearchTimeSeconds  float64
	TotalPlotsCount    int
}

// activityPattern matches harvester challenge participation lines, e.g.
//
//	2021-05-05T06:11:35.587 harvester chia.harvester.harvester: INFO
//	  1 plots were eligible for farming 68defa4bd5... Found 0 proofs.
//	  Time: 0.34134 s. Total 572 plots
var activityPattern = regexp.MustCompile(
	`(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}) harvester chia\.harvester\.harvester:\s+INFO\s+` +
		`(\d+) plots were eligible for farming ([0-9a-f]+)\.\.\. ` +
		`Found (\d+) proofs\. Time: (\d+\.?\d*) s\. Total (\d+) plots`)

const timestampLayout = "2006-01-02T15:04:05.000"

// HarvesterActivityParser extracts ActivityMessages from harvester log output.
type HarvesterActivityParser struct{}

// NewHarvesterActivityParser returns a ready-to-use parser.
func NewHarvesterActivityParser() *HarvesterActivityParser {
	return &HarvesterActivityParser{}
}

// Parse scans logs — zero or more lines of arbitrary text — and returns the
// activity messages found, in log order. Lines that do not match or carry
// unparseable fields are skipped, never reported as errors.
func (p *HarvesterActivityParser) Parse(logs string) []ActivityMessage {
	var msgs []ActivityMessage
	for _, m := range activityPattern.FindAllStringSubmatch(logs, -1) {
		ts, err := time.Parse(timestampLayout, m[1])
		if err != nil {
			slog.Debug("parse: skipping activity line with bad timestamp", "raw", m[1])
			continue
		}
		eligible, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		proofs, err := strconv.Atoi(m[4])
		if err != nil {
			continue
		}
		searchTime, err := strconv.ParseFloat(m[5], 64)
		if err != nil {
			continue
		}
		plots, err := strconv.Atoi(m[6])
		if err != nil {
			continue
		}
		msgs = append(msgs, ActivityMessage{
			Timestamp:          ts,
			EligiblePlotsCount: eligible,
			ChallengeHash:      m[3],
			FoundProofsCount:   proofs,
			SearchTimeSeconds:  searchTime,
			TotalPlotsCount:    plots,
		})
	}
	return msgs
}
