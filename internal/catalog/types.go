// Package catalog holds the curated data the navigator answers from:
// government service records and life-event checklists.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kerala-navigator/navigator/internal/lang"
)

// Localized is a bilingual field. EN is always present; ML may be empty, in
// which case readers fall back to EN.
type Localized[T ~string | ~[]string] struct {
	EN T `json:"en" yaml:"en"`
	ML T `json:"ml,omitempty" yaml:"ml,omitempty"`
}

// Text is a bilingual string.
type Text = Localized[string]

// TextList is a bilingual list of strings.
type TextList = Localized[[]string]

// In resolves the field for l, falling back to English when the Malayalam
// translation is absent.
func (f Localized[T]) In(l lang.Language) T {
	if l == lang.Malayalam && len(f.ML) > 0 {
		return f.ML
	}
	return f.EN
}

// UnmarshalYAML accepts either a plain value (English only) or an {en, ml}
// mapping.
func (f *Localized[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		var v T
		if err := node.Decode(&v); err != nil {
			return err
		}
		f.EN = v
		return nil
	}
	var p struct {
		EN T `yaml:"en"`
		ML T `yaml:"ml"`
	}
	if err := node.Decode(&p); err != nil {
		return err
	}
	f.EN, f.ML = p.EN, p.ML
	return nil
}

// FeeTier is one category of a tiered fee, for example "BPL: ₹15".
type FeeTier struct {
	Category string
	Amount   string
}

// Fee is either a flat amount or an ordered list of per-category amounts.
type Fee struct {
	Flat  string
	Tiers []FeeTier
}

// IsZero reports whether no fee was authored.
func (f Fee) IsZero() bool {
	return f.Flat == "" && len(f.Tiers) == 0
}

// String renders the fee for display. Tiers are joined in authored order.
func (f Fee) String() string {
	if len(f.Tiers) == 0 {
		return f.Flat
	}
	parts := make([]string, len(f.Tiers))
	for i, t := range f.Tiers {
		parts[i] = t.Category + ": " + t.Amount
	}
	return strings.Join(parts, ", ")
}

func (f *Fee) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		f.Flat = node.Value
		return nil
	case yaml.MappingNode:
		f.Tiers = make([]FeeTier, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			f.Tiers = append(f.Tiers, FeeTier{
				Category: node.Content[i].Value,
				Amount:   node.Content[i+1].Value,
			})
		}
		return nil
	default:
		return fmt.Errorf("fee: unexpected yaml node kind %d at line %d", node.Kind, node.Line)
	}
}

// MarshalJSON writes a flat fee as a string and a tiered fee as an object
// whose keys keep their authored order. An empty fee is null.
func (f Fee) MarshalJSON() ([]byte, error) {
	if f.IsZero() {
		return []byte("null"), nil
	}
	if len(f.Tiers) == 0 {
		return json.Marshal(f.Flat)
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range f.Tiers {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(t.Category)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(t.Amount)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (f *Fee) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = Fee{}
		return nil
	}
	if data[0] == '"' {
		*f = Fee{}
		return json.Unmarshal(data, &f.Flat)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("fee: %w", err)
	}
	var tiers []FeeTier
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("fee: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("fee: unexpected key %v", tok)
		}
		var amount string
		if err := dec.Decode(&amount); err != nil {
			return fmt.Errorf("fee %q: %w", key, err)
		}
		tiers = append(tiers, FeeTier{Category: key, Amount: amount})
	}
	*f = Fee{Tiers: tiers}
	return nil
}

// ServiceRecord is a curated government service definition. Records are
// read-only at request time.
type ServiceRecord struct {
	ID                string   `json:"id" yaml:"id"`
	Name              Text     `json:"name" yaml:"name"`
	Department        string   `json:"department,omitempty" yaml:"department"`
	Keywords          []string `json:"keywords" yaml:"keywords"`
	Steps             TextList `json:"steps" yaml:"steps"`
	RequiredDocuments TextList `json:"required_documents" yaml:"required_documents"`
	Fee               Fee      `json:"fee" yaml:"fee"`
	ProcessingTime    Text     `json:"processing_time" yaml:"processing_time"`
	Validity          Text     `json:"validity" yaml:"validity"`
	BestVisitTime     Text     `json:"best_visit_time" yaml:"best_visit_time"`
	ApplyAt           Text     `json:"apply_at" yaml:"apply_at"`
	AkshayaEligible   bool     `json:"akshaya_eligible" yaml:"akshaya_eligible"`
	Notes             Text     `json:"notes" yaml:"notes"`
	OnlineApplyURL    string   `json:"online_apply_url,omitempty" yaml:"online_apply_url"`
}

// Step is one entry of a life-event checklist.
type Step struct {
	Number         int      `json:"step" yaml:"step"`
	Task           Text     `json:"task" yaml:"task"`
	Office         string   `json:"office,omitempty" yaml:"office"`
	Documents      []string `json:"documents" yaml:"documents"`
	Note           string   `json:"note,omitempty" yaml:"note"`
	MapQuery       string   `json:"mapQuery,omitempty" yaml:"map_query"`
	Fee            string   `json:"fee,omitempty" yaml:"fee"`
	ProcessingTime string   `json:"processingTime,omitempty" yaml:"processing_time"`
}

// LifeEvent maps trigger phrases to an ordered procedural checklist.
type LifeEvent struct {
	ID          string   `json:"id" yaml:"id"`
	Name        Text     `json:"name" yaml:"name"`
	Description Text     `json:"description" yaml:"description"`
	Triggers    []string `json:"-" yaml:"triggers"`
	Checklist   []Step   `json:"checklist" yaml:"checklist"`
}

// MarshalJSON flattens the task into task and task_ml, the shape the web
// client reads.
func (s Step) MarshalJSON() ([]byte, error) {
	docs := s.Documents
	if docs == nil {
		docs = []string{}
	}
	return json.Marshal(struct {
		Number         int      `json:"step"`
		Task           string   `json:"task"`
		TaskML         string   `json:"task_ml,omitempty"`
		Office         string   `json:"office,omitempty"`
		Documents      []string `json:"documents"`
		Note           string   `json:"note,omitempty"`
		MapQuery       string   `json:"mapQuery,omitempty"`
		Fee            string   `json:"fee,omitempty"`
		ProcessingTime string   `json:"processingTime,omitempty"`
	}{s.Number, s.Task.EN, s.Task.ML, s.Office, docs, s.Note, s.MapQuery, s.Fee, s.ProcessingTime})
}

// MarshalJSON emits flat name/name_ml and description/description_ml
// strings. Triggers stay server-side.
func (e LifeEvent) MarshalJSON() ([]byte, error) {
	checklist := e.Checklist
	if checklist == nil {
		checklist = []Step{}
	}
	return json.Marshal(struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		NameML        string `json:"name_ml,omitempty"`
		Description   string `json:"description"`
		DescriptionML string `json:"description_ml,omitempty"`
		Checklist     []Step `json:"checklist"`
	}{e.ID, e.Name.EN, e.Name.ML, e.Description.EN, e.Description.ML, checklist})
}
