package allsports

import (
	"encoding/json"

	"sportz-service/pkg/models"
)

const defaultResult = "0 - 0"

// Extract computes the score and metadata a live event implies. The final result wins over
// the half-time result; with neither, the score is 0 - 0.
func Extract(ev *LiveEvent) (homeScore, awayScore int, metadata models.MatchMetadata) {
	homeScore, awayScore = ParseResult(firstNonEmpty(ev.EventFinalResult, ev.EventHalftimeResult, defaultResult))

	metadata = models.MatchMetadata{
		Goalscorers: arrayOrEmpty(ev.Goalscorers),
		Cards:       arrayOrEmpty(ev.Cards),
		Substitutes: arrayOrEmpty(ev.Substitutes),
		Statistics:  arrayOrEmpty(ev.Statistics),
		Lineups:     objectOrEmpty(ev.Lineups),
		EventStatus: string(ev.EventStatus),
		EventTime:   string(ev.EventTime),
		LeagueName:  string(ev.LeagueName),
	}
	return homeScore, awayScore, metadata
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func arrayOrEmpty(raw json.RawMessage) []json.RawMessage {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil || items == nil {
		return []json.RawMessage{}
	}
	return items
}

func objectOrEmpty(raw json.RawMessage) map[string]json.RawMessage {
	var obj map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &obj) != nil || obj == nil {
		return map[string]json.RawMessage{}
	}
	return obj
}
