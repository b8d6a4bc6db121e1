package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Recommendation is the structured career analysis for one profile.
type Recommendation struct {
	JobRoles     []JobRole  `json:"jobRoles"`
	StudyOptions []string   `json:"higherStudies"`
	Roadmap      []Phase    `json:"roadmap"`
	Resources    []Resource `json:"resources"`
	Confidence   FlexString `json:"confidence"`
	SkillGaps    SkillGaps  `json:"skillGaps"`
	Insights     []string   `json:"personalizedInsights"`
}

// JobRole is a suggested position.
type JobRole struct {
	Title       string     `json:"title"`
	Match       FlexString `json:"match"`
	Description string     `json:"description"`
	Salary      string     `json:"salary"`
	Skills      []string   `json:"skills"`
}

// Phase is one step of the month-by-month roadmap.
type Phase struct {
	Month string     `json:"month"`
	Hours FlexString `json:"hours"`
	Focus string     `json:"focus"`
	Tasks []string   `json:"tasks"`
}

// Resource is a free learning resource.
type Resource struct {
	Name   string     `json:"name"`
	Type   string     `json:"type"`
	Rating FlexString `json:"rating"`
	URL    string     `json:"url"`
}

// SkillGap lists the skills still needed for one role.
type SkillGap struct {
	Role   string
	Skills []string
}

// SkillGaps decodes a role -> skills JSON object keeping the object's key order.
type SkillGaps []SkillGap

func (g *SkillGaps) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*g = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("skillGaps: expected object, got %v", tok)
	}
	out := SkillGaps{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		role, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("skillGaps: unexpected key %v", keyTok)
		}
		var skills []string
		if err := dec.Decode(&skills); err != nil {
			return fmt.Errorf("skillGaps[%s]: %w", role, err)
		}
		out = append(out, SkillGap{Role: role, Skills: skills})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*g = out
	return nil
}

func (g SkillGaps) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, gap := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(gap.Role)
		if err != nil {
			return nil, err
		}
		skills := gap.Skills
		if skills == nil {
			skills = []string{}
		}
		val, err := json.Marshal(skills)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FlexString accepts either a JSON string or number; the service is not
// consistent about match percentages, ratings, hours and confidence.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*f = ""
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", trimmed)
		}
		*f = FlexString(n.String())
		return nil
	}
}

// String returns the raw text.
func (f FlexString) String() string {
	return string(f)
}

// Float parses the value as a number when possible.
func (f FlexString) Float() (float64, bool) {
	v, err := strconv.ParseFloat(string(f), 64)
	return v, err == nil
}
