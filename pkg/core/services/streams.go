package services

import (
	"fmt"
	"strings"

	"github.com/jakechorley/rodizio/pkg/db"
)

// Stream is an uploadable record stream
type Stream string

// Uploadable streams
const (
	StreamAvailability Stream = "availability"
	StreamLoading      Stream = "loading"
	StreamReturns      Stream = "returns"
	StreamCancellation Stream = "cancellation"
	StreamRefusals     Stream = "refusals"
)

// Streams lists the uploadable streams in display order
var Streams = []Stream{
	StreamAvailability,
	StreamLoading,
	StreamReturns,
	StreamCancellation,
	StreamRefusals,
}

// streamAliases accepts the operations team's names for each stream
var streamAliases = map[string]Stream{
	"disponibilidade": StreamAvailability,
	"carregamento":    StreamLoading,
	"devolucoes":      StreamReturns,
	"devolução":       StreamReturns,
	"devolucao":       StreamReturns,
	"cancelamento":    StreamCancellation,
	"cancelamentos":   StreamCancellation,
	"recusas":         StreamRefusals,
	"recusa":          StreamRefusals,
}

// ParseStream resolves a stream by its name or alias, case-insensitively
func ParseStream(name string) (Stream, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, s := range Streams {
		if string(s) == key {
			return s, nil
		}
	}
	if s, ok := streamAliases[key]; ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStream, name)
}

// Table returns the logical table the stream is stored in
func (s Stream) Table() string {
	switch s {
	case StreamAvailability:
		return db.TableAvailability
	case StreamLoading:
		return db.TableLoading
	case StreamReturns:
		return db.TableReturns
	case StreamCancellation:
		return db.TableCancellation
	case StreamRefusals:
		return db.TableRefusals
	}
	return ""
}

// legacyHeaders maps the headers written by the first generation of the
// rotation sheets to the current ones, per logical table. The week column
// ("semana") is resolved by week.NormalizeTable.
var legacyHeaders = map[string]map[string]string{
	db.TableAvailability: {
		"data":            "date",
		"cep_ofertado":    "offered_postal_prefix",
		"cep_base":        "base_postal_prefix",
		"turno_base":      "base_shift",
		"turno_ofertado":  "offered_shift",
		"data_importacao": "import_timestamp",
	},
	db.TableLoading: {
		"data":               "date",
		"turno_carregamento": "loading_shift",
		"turno_base":         "base_shift",
		"fora_do_turno":      "is_off_shift",
		"data_importacao":    "import_timestamp",
	},
	db.TableReturns: {
		"data":            "date",
		"qtd_pacotes":     "package_count",
		"turno_base":      "base_shift",
		"data_importacao": "import_timestamp",
	},
	db.TableCancellation: {
		"data":            "date",
		"turno":           "shift",
		"data_importacao": "import_timestamp",
	},
	db.TableRefusals: {
		"data":            "date",
		"turno_recusa":    "refusal_shift",
		"turno_base":      "base_shift",
		"data_importacao": "import_timestamp",
	},
}
