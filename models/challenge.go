package models

import "encoding/json"

type ChallengeType string

const (
	ChallengeTypeSelect ChallengeType = "SELECT"
	ChallengeTypeHint   ChallengeType = "HINT"
	ChallengeTypeCode   ChallengeType = "CODE"
)

// TestCase is one stdin/expected-stdout pair a submission is judged against.
type TestCase struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Challenge is a coding problem players compete over. Only CODE challenges
// carry test cases; the ordered list is stored as a JSON array column.
type Challenge struct {
	ID   string        `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Slug string        `gorm:"uniqueIndex;not null" json:"slug"`
	Type ChallengeType `gorm:"type:varchar(16);not null" json:"type"`

	Question           string `gorm:"type:text;not null" json:"question"`
	ProblemDescription string `gorm:"type:text" json:"problem_description"`

	TestCasesJSON string `gorm:"column:test_cases;type:jsonb;default:'[]'" json:"-"`

	StubCodePy   string `gorm:"type:text" json:"stub_code_py"`
	StubCodeJs   string `gorm:"type:text" json:"stub_code_js"`
	StubCodeJava string `gorm:"type:text" json:"stub_code_java"`
	StubCodeCpp  string `gorm:"type:text" json:"stub_code_cpp"`

	Timestamps
}

// TestCases decodes the stored test case list, preserving order.
func (c *Challenge) TestCases() ([]TestCase, error) {
	if c.TestCasesJSON == "" {
		return nil, nil
	}
	var cases []TestCase
	if err := json.Unmarshal([]byte(c.TestCasesJSON), &cases); err != nil {
		return nil, err
	}
	return cases, nil
}

// SetTestCases encodes cases into the JSON column.
func (c *Challenge) SetTestCases(cases []TestCase) error {
	raw, err := json.Marshal(cases)
	if err != nil {
		return err
	}
	c.TestCasesJSON = string(raw)
	return nil
}
