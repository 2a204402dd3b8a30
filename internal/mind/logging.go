package mind

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/keshon/mahiro/internal/ai"
)

// LogLLMCall logs the prompt before it is sent. Call immediately before provider.Generate.
func LogLLMCall(log zerolog.Logger, action string, messages []ai.Message, params map[string]string) {
	if log.GetLevel() > zerolog.DebugLevel || zerolog.GlobalLevel() > zerolog.DebugLevel {
		log.Info().Str("action", action).Int("messages", len(messages)).Msg("llm call")
		return
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ev := log.Debug().Str("action", action).Int("messages", len(messages))
	for _, k := range keys {
		if v := params[k]; v != "" {
			ev = ev.Str(k, v)
		}
	}
	ev.Msg("llm call")
	if len(messages) == 0 {
		return
	}
	log.Debug().
		Int("system_len", len(messages[0].Content)).
		Str("system_preview", preview(messages[0].Content, 500)).
		Msg("llm system")
	for i := 1; i < len(messages); i++ {
		m := messages[i]
		log.Debug().
			Int("idx", i).
			Str("role", m.Role).
			Int("len", len(m.Content)).
			Str("content", preview(m.Content, 200)).
			Msg("llm message")
	}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
