package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/ledger"
	"github.com/shopspring/decimal"
)

// ErrNoProposal is returned when the model answer holds no JSON object.
var ErrNoProposal = errors.New("no transaction found in the answer")

// DecodeProposal reads the JSON object answered by the parser model.
//
// Code fences around the object are ignored. Fields are looked up at the top level first and
// then anywhere in the document. Null and missing fields stay empty. The amount may be a
// number or a string with thousands separators.
func DecodeProposal(text string) (p ledger.ProposedTransaction, err error) {
	text = stripFences(text)
	if text == "" {
		return p, ErrNoProposal
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return p, fmt.Errorf("%w: %v", ErrNoProposal, err)
	}
	if _, ok := doc.(map[string]any); !ok {
		return p, fmt.Errorf("%w: got %T", ErrNoProposal, doc)
	}

	p.Type = lookupString(doc, "type")
	p.Currency = strings.ToUpper(lookupString(doc, "currency"))
	p.Category = lookupString(doc, "category")
	p.Account = lookupString(doc, "account")
	p.FromAccount = lookupString(doc, "fromAccount")
	p.ToAccount = lookupString(doc, "toAccount")
	p.Note = lookupString(doc, "note")

	if amount := lookupString(doc, "amount"); amount != "" {
		amount = strings.NewReplacer(",", "", " ", "", "_", "").Replace(amount)
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return p, fmt.Errorf("cannot read amount %q: %w", amount, err)
		}
		p.Amount = &d
	}
	return p, nil
}

// lookup returns the value of field, or nil.
func lookup(doc any, field string) any {
	v, err := jsonpath.Get("$."+field, doc)
	if err != nil {
		if v, err = jsonpath.Get("$.."+field, doc); err != nil {
			return nil
		}
	}
	// jsonpath returns a list for recursive paths: keep the first answer.
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		v = list[0]
	}
	return v
}

func lookupString(doc any, field string) string {
	switch v := lookup(doc, field).(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case bool:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

// stripFences removes a markdown code fence around s.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:] // language tag
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
