// Command recommend queries a running matinee server and prints the ranked
// picks for a group of Letterboxd usernames.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const clientTimeout = 90 * time.Second

type request struct {
	Usernames      []string `json:"usernames"`
	DaysAhead      *int     `json:"days_ahead,omitempty"`
	MaxResults     *int     `json:"max_results,omitempty"`
	UseCalendar    *bool    `json:"use_calendar,omitempty"`
	MinHours       *float64 `json:"min_hours,omitempty"`
	LimitAmsterdam *bool    `json:"limit_amsterdam,omitempty"`
	Mood           string   `json:"mood,omitempty"`
	ForceRefresh   bool     `json:"force_refresh,omitempty"`
}

type response struct {
	Recommendations []struct {
		Title         string         `json:"title"`
		Year          int            `json:"year,omitempty"`
		GroupScore    float64        `json:"group_score"`
		PerUserScores map[string]any `json:"per_user_scores"`
		ShowTimes     []struct {
			Cinema string    `json:"cinema"`
			Start  time.Time `json:"start"`
		} `json:"showtimes"`
	} `json:"recommendations"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func main() {
	var (
		server      = flag.String("server", "http://localhost:9090", "matinee server base URL")
		users       = flag.String("users", "", "comma-separated Letterboxd usernames (required)")
		days        = flag.Int("days", 7, "days ahead to search")
		max         = flag.Int("max", 10, "maximum number of recommendations")
		noCalendar  = flag.Bool("no-calendar", false, "skip calendar intersection")
		minHours    = flag.Float64("min-hours", 2.0, "minimum free slot length in hours")
		mood        = flag.String("mood", "", "optional mood filter (see /moods)")
		refresh     = flag.Bool("refresh", false, "bypass the server-side cache")
		allCinemas  = flag.Bool("all-cinemas", false, "include cinemas outside Amsterdam")
	)
	flag.Parse()

	if *users == "" {
		fmt.Fprintln(os.Stderr, "error: -users is required")
		flag.Usage()
		os.Exit(2)
	}

	useCal := !*noCalendar
	limitAms := !*allCinemas
	req := request{
		Usernames:      splitUsers(*users),
		DaysAhead:      days,
		MaxResults:     max,
		UseCalendar:    &useCal,
		MinHours:       minHours,
		LimitAmsterdam: &limitAms,
		Mood:           *mood,
		ForceRefresh:   *refresh,
	}

	client := resty.New().SetTimeout(clientTimeout)
	var out response
	var apiErr errorBody
	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post(strings.TrimRight(*server, "/") + "/recommendations")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: request failed: %v\n", err)
		os.Exit(1)
	}
	if resp.IsError() {
		fmt.Fprintf(os.Stderr, "error: server returned %d: %s\n", resp.StatusCode(), apiErr.Message)
		os.Exit(1)
	}

	if len(out.Recommendations) == 0 {
		fmt.Println("No movies fit the group's taste and schedule.")
		return
	}
	for i, rec := range out.Recommendations {
		title := rec.Title
		if rec.Year != 0 {
			title = fmt.Sprintf("%s (%d)", rec.Title, rec.Year)
		}
		fmt.Printf("%2d. %-45s score %.3f\n", i+1, title, rec.GroupScore)
		for user, score := range rec.PerUserScores {
			switch v := score.(type) {
			case float64:
				fmt.Printf("      %-20s %.3f\n", user, v)
			default:
				fmt.Printf("      %-20s no data\n", user)
			}
		}
		for _, st := range rec.ShowTimes {
			fmt.Printf("      %s  %s\n", st.Start.Local().Format("Mon Jan 2 15:04"), st.Cinema)
		}
	}
}

func splitUsers(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
