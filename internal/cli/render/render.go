// Package render prints API results as terminal tables and text charts
package render

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"text/tabwriter"
	"time"
	"unicode"

	"github.com/cropwise-dev/cropwise/internal/cli/client"
	"github.com/cropwise-dev/cropwise/internal/cli/soil"
	"github.com/cropwise-dev/cropwise/internal/cli/userconfig"
)

const (
	barWidth  = 30
	timestamp = "2006-01-02 15:04"
	none      = "—"
)

// HumanizeModel turns a model key like random_forest into "Random Forest"
func HumanizeModel(key string) string {
	if key == "" {
		return none
	}
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// VoteCount is how many models picked a crop
type VoteCount struct {
	Crop  string
	Votes int
}

// Votes returns the crop tally, most voted first. The service's own tally
// wins when present; otherwise every model's prediction counts once.
func Votes(res *client.PredictionResult) []VoteCount {
	tally := res.Votes
	if tally == nil {
		tally = make(map[string]int)
		for _, crop := range res.Predictions {
			if crop == "" || crop == "error" {
				continue
			}
			tally[crop]++
		}
	}

	counts := make([]VoteCount, 0, len(tally))
	for crop, n := range tally {
		counts = append(counts, VoteCount{Crop: crop, Votes: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Votes != counts[j].Votes {
			return counts[i].Votes > counts[j].Votes
		}
		return counts[i].Crop < counts[j].Crop
	})
	return counts
}

// BestModel returns the model to headline and its accuracy in percent
func BestModel(res *client.PredictionResult) (string, float64) {
	key := res.BestModel
	if key == "" {
		key = firstKey(res.Predictions)
	}

	var accuracy float64
	if m, ok := res.ModelMetrics[key]; ok && m.Accuracy != 0 {
		accuracy = m.Accuracy
	} else if a, ok := res.Accuracies[key]; ok {
		accuracy = a
	}
	return key, percent(accuracy)
}

// percent accepts both fractions (0.94) and percentages (94.2)
func percent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v <= 1 {
		return v * 100
	}
	return v
}

func firstKey(m map[string]string) string {
	keys := sortedKeys(m)
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bar draws value as a text bar scaled against max
func Bar(value, max float64, width int) string {
	if max <= 0 || value <= 0 || math.IsNaN(value) {
		return ""
	}
	n := int(math.Round(value / max * float64(width)))
	if n > width {
		n = width
	}
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

// Prediction prints the full result of one prediction
func Prediction(w io.Writer, res *client.PredictionResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tPREDICTION\tACCURACY (%)")
	fmt.Fprintln(tw, "─────\t──────────\t────────────")
	for _, model := range sortedKeys(res.Predictions) {
		acc := none
		if a, ok := res.Accuracies[model]; ok {
			acc = fmt.Sprintf("%.1f", percent(a))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", HumanizeModel(model), res.Predictions[model], acc)
	}
	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Model votes:")
	votes := Votes(res)
	if len(votes) == 0 {
		fmt.Fprintln(w, "  No consensus")
	}
	maxVotes := 0
	for _, v := range votes {
		maxVotes = max(maxVotes, v.Votes)
	}
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, v := range votes {
		fmt.Fprintf(tw, "  %s\t%d\t%s\n", v.Crop, v.Votes, Bar(float64(v.Votes), float64(maxVotes), barWidth))
	}
	tw.Flush()

	model, pct := BestModel(res)
	crop := res.RecommendedCrop
	if crop == "" {
		crop = none
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Recommended crop: %s\n", strings.ToUpper(crop))
	fmt.Fprintf(w, "Best model:       %s (%.0f%%)\n", HumanizeModel(model), pct)
}

// Soil prints a sample as a bar chart, each bar scaled to its hard limit
func Soil(w io.Writer, in soil.Input) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, m := range soil.Measurements {
		v := in.Value(m.Key)
		fmt.Fprintf(tw, "%s\t%s%s\t%s\n", m.Label, formatValue(v), m.Unit, Bar(v-m.Min, m.Max-m.Min, barWidth))
	}
	tw.Flush()
}

// Validation prints validation errors and warnings
func Validation(w io.Writer, res soil.Result) {
	for _, e := range res.Errors {
		fmt.Fprintf(w, "✗ %s\n", e)
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "! %s\n", warn)
	}
}

// History prints server-side prediction records
func History(w io.Writer, records []client.PredictionRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No history available.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tCROP\tMODEL\tN\tP\tK\tTEMP\tHUMIDITY\tPH\tRAINFALL")
	fmt.Fprintln(tw, "────\t────\t─────\t─\t─\t─\t────\t────────\t──\t────────")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s°C\t%s%%\t%s\t%s mm\n",
			formatTime(r.CreatedAt),
			r.PredictedCrop,
			HumanizeModel(r.BestModel),
			formatValue(r.Nitrogen),
			formatValue(r.Phosphorus),
			formatValue(r.Potassium),
			formatValue(r.Temperature),
			formatValue(r.Humidity),
			formatValue(r.Ph),
			formatValue(r.Rainfall),
		)
	}
	tw.Flush()
}

// AdminPredictions prints every user's predictions
func AdminPredictions(w io.Writer, records []client.PredictionRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No predictions found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSER\tCROP\tMODEL\tCREATED AT")
	fmt.Fprintln(tw, "──\t────\t────\t─────\t──────────")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.UserID, r.PredictedCrop, HumanizeModel(r.BestModel), formatTime(r.CreatedAt))
	}
	tw.Flush()
}

// LocalHistory prints predictions remembered on this machine
func LocalHistory(w io.Writer, entries []userconfig.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history available.")
		return
	}

	for _, e := range entries {
		fmt.Fprintf(w, "%s  %s\n", formatTime(e.Time), strings.ToUpper(e.RecommendedCrop))
		fmt.Fprintf(w, "  N=%s, P=%s, K=%s, Temp=%s°C, Humidity=%s%%, pH=%s, Rainfall=%s mm\n",
			formatValue(e.Input.N),
			formatValue(e.Input.P),
			formatValue(e.Input.K),
			formatValue(e.Input.Temperature),
			formatValue(e.Input.Humidity),
			formatValue(e.Input.Ph),
			formatValue(e.Input.Rainfall),
		)
	}
}

// Users prints accounts
func Users(w io.Writer, users []client.UserDetail) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No users found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tCREATED AT")
	fmt.Fprintln(tw, "──\t────\t─────\t────\t──────────")
	for _, u := range users {
		role := "user"
		if u.IsAdmin {
			role = "admin"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.FullName, u.Email, role, formatTime(u.CreatedAt))
	}
	tw.Flush()
}

// Profile prints the signed-in user's account
func Profile(w io.Writer, u *client.UserDetail) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name:\t%s\n", u.FullName)
	fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
	if u.IsAdmin {
		fmt.Fprintf(tw, "Role:\t%s\n", "Admin")
	}
	if !u.CreatedAt.IsZero() {
		fmt.Fprintf(tw, "Member since:\t%s\n", formatTime(u.CreatedAt))
	}
	tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return none
	}
	return t.Local().Format(timestamp)
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return none
	}
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
