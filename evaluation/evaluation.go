// Package evaluation scores stored episode records. It reports per-episode
// results and aggregates them into a run summary.
package evaluation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/hupe1980/webreasoner/core"
	"github.com/hupe1980/webreasoner/runner"
)

var answerRe = regexp.MustCompile(`(?s)^send_msg_to_user\(\s*(['"])(.*)['"]\s*\)\s*$`)

// Result is the verdict for one episode.
type Result struct {
	Job       string  `json:"job"`
	EpisodeID string  `json:"episode_id"`
	Complete  bool    `json:"complete"`
	Answer    string  `json:"answer,omitempty"`
	Steps     int     `json:"steps"`
	Cost      float64 `json:"cost"`
	Error     string  `json:"error,omitempty"`
}

// Evaluator turns an episode into a Result.
type Evaluator interface {
	Evaluate(ep *runner.Episode) (*Result, error)
}

// CompletionEvaluator accepts an episode when the runner marked it complete.
// When Expected is set, the final answer must also contain it
// (case-insensitive).
type CompletionEvaluator struct {
	Expected map[string]string
}

// Evaluate implements Evaluator.
func (c CompletionEvaluator) Evaluate(ep *runner.Episode) (*Result, error) {
	if ep == nil {
		return nil, fmt.Errorf("evaluation: nil episode")
	}
	res := &Result{
		Job:       ep.Job,
		EpisodeID: ep.ID,
		Complete:  ep.IsComplete,
		Answer:    Answer(ep.FinalAction()),
		Steps:     len(ep.History),
		Cost:      ep.TotalCost,
		Error:     ep.Error,
	}
	if want, ok := c.Expected[ep.Job]; ok && res.Complete {
		res.Complete = strings.Contains(strings.ToLower(res.Answer), strings.ToLower(want))
	}
	return res, nil
}

// Answer extracts the message of a send_msg_to_user action, or "".
func Answer(action string) string {
	m := answerRe.FindStringSubmatch(strings.TrimSpace(action))
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[2], `\`+m[1], m[1])
}

// Summary aggregates results.
type Summary struct {
	Episodes    int     `json:"episodes"`
	Completed   int     `json:"completed"`
	Errored     int     `json:"errored"`
	SuccessRate float64 `json:"success_rate"`
	AvgSteps    float64 `json:"avg_steps"`
	TotalCost   float64 `json:"total_cost"`
}

// Summarize folds results into a Summary.
func Summarize(results []*Result) Summary {
	var s Summary
	steps := 0
	for _, r := range results {
		if r == nil {
			continue
		}
		s.Episodes++
		steps += r.Steps
		s.TotalCost += r.Cost
		if r.Complete {
			s.Completed++
		}
		if r.Error != "" {
			s.Errored++
		}
	}
	if s.Episodes > 0 {
		s.SuccessRate = float64(s.Completed) / float64(s.Episodes)
		s.AvgSteps = float64(steps) / float64(s.Episodes)
	}
	return s
}

// LoadEpisodes decodes every stored record of a job in artifact id order.
func LoadEpisodes(store core.ArtifactStore, jobName string) ([]*runner.Episode, error) {
	ids, err := store.List(jobName)
	if err != nil {
		return nil, err
	}
	episodes := make([]*runner.Episode, 0, len(ids))
	for _, id := range ids {
		data, err := store.Get(jobName, id)
		if err != nil {
			return nil, err
		}
		var ep runner.Episode
		if err := json.Unmarshal(data, &ep); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", jobName, id, err)
		}
		episodes = append(episodes, &ep)
	}
	return episodes, nil
}

// EvaluateJobs loads the latest episode of each job and evaluates it. Jobs
// without a record are skipped.
func EvaluateJobs(store core.ArtifactStore, ev Evaluator, jobs []string) ([]*Result, error) {
	results := make([]*Result, 0, len(jobs))
	for _, job := range jobs {
		episodes, err := LoadEpisodes(store, job)
		if err != nil {
			return nil, err
		}
		if len(episodes) == 0 {
			continue
		}
		res, err := ev.Evaluate(episodes[len(episodes)-1])
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}
