package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Judge0 language IDs for the languages players can pick in the editor.
var judgeLanguageIDs = map[string]int{
	"python":     71,
	"javascript": 63,
	"java":       62,
	"cpp":        54,
}

// judgeStatusAccepted is the Judge0 status meaning every output line matched.
// Every other status (wrong answer, compile error, runtime error, TLE, ...)
// counts as a failed test case.
const judgeStatusAccepted = 3

// JudgeLanguageID maps an editor language to its Judge0 ID.
func JudgeLanguageID(language string) (int, bool) {
	id, ok := judgeLanguageIDs[language]
	return id, ok
}

type JudgeStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Verdict is the judge's result for one test case of one submission.
type Verdict struct {
	Status        JudgeStatus `json:"status"`
	Stdout        string      `json:"stdout"`
	Stderr        string      `json:"stderr"`
	CompileOutput string      `json:"compile_output"`
}

// Accepted reports whether the verdict means the test case passed.
func (v Verdict) Accepted() bool { return v.Status.ID == judgeStatusAccepted }

// CodeJudge runs one piece of source against one test case.
type CodeJudge interface {
	Judge(ctx context.Context, languageID int, sourceCode, stdin, expectedOutput string) (*Verdict, error)
}

// JudgeClient talks to a hosted Judge0 instance in synchronous (wait=true)
// mode: one POST per test case, verdict in the response body.
type JudgeClient struct {
	Host        string
	APIKey      string
	CaseTimeout time.Duration
	Client      *http.Client
}

func NewJudgeClient(host, apiKey string, caseTimeout time.Duration) *JudgeClient {
	if caseTimeout <= 0 {
		caseTimeout = 30 * time.Second
	}
	return &JudgeClient{
		Host:        host,
		APIKey:      apiKey,
		CaseTimeout: caseTimeout,
		Client:      &http.Client{Timeout: caseTimeout + 5*time.Second},
	}
}

func (j *JudgeClient) submissionsURL() string {
	host := j.Host
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return host + "/submissions?base64_encoded=false&wait=true"
}

func (j *JudgeClient) Judge(ctx context.Context, languageID int, sourceCode, stdin, expectedOutput string) (*Verdict, error) {
	reqBody := map[string]any{
		"language_id":     languageID,
		"source_code":     sourceCode,
		"stdin":           stdin,
		"expected_output": expectedOutput,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, j.CaseTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", j.submissionsURL(), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-rapidapi-key", j.APIKey)
	req.Header.Set("x-rapidapi-host", j.Host)

	resp, err := j.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("judge request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("Judge returned %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("judge non-OK response: %d", resp.StatusCode)
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, fmt.Errorf("failed to decode judge response: %w", err)
	}
	return &verdict, nil
}
