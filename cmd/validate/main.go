package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/haggle/pkg/shop"
	"github.com/jwebster45206/haggle/pkg/textfilter"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <shop.yaml|dir> [...]\n", os.Args[0])
		os.Exit(1)
	}

	files, err := expand(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "No shop files found")
		os.Exit(1)
	}

	failed := false
	for _, filename := range files {
		fmt.Printf("Validating %s...\n", filename)
		if err := validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Println("Shop file is valid!")
	}
	if failed {
		os.Exit(1)
	}
}

// expand replaces each directory argument with the YAML files inside it.
func expand(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(arg, pattern))
			if err != nil {
				return nil, err
			}
			files = append(files, matches...)
		}
	}
	return files, nil
}

var validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

// validateFile decodes strictly, so unknown keys fail, then checks the
// shop can run a full game.
func validateFile(filename string) error {
	baseName := filepath.Base(filename)
	ext := filepath.Ext(baseName)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("shop file must have .yaml extension: %s", baseName)
	}
	if !validFilenameRegex.MatchString(strings.TrimSuffix(baseName, ext)) {
		return fmt.Errorf("shop filename '%s' must be lowercase snake_case (e.g., my_shop.yaml)", baseName)
	}

	s, err := shop.LoadFile(filename, true)
	if err != nil {
		return fmt.Errorf("strict decoding failed: %w", err)
	}
	if err := s.Validate(); err != nil {
		return err
	}

	var problems []string
	if s.ContentRating != "" && !knownRating(s.ContentRating) {
		problems = append(problems, fmt.Sprintf("content_rating %q is not one of %s", s.ContentRating, strings.Join(textfilter.Ratings, ", ")))
	}
	for _, p := range []struct {
		field string
		temp  *float64
	}{
		{"client.reply_request", s.Client.ReplyRequest.Temperature},
		{"client.reasoning_request", s.Client.ReasoningRequest.Temperature},
		{"client.personality_request", s.Client.PersonalityRequest.Temperature},
		{"items.request", s.Items.Request.Temperature},
	} {
		if p.temp != nil && (*p.temp < 0 || *p.temp > 2) {
			problems = append(problems, fmt.Sprintf("%s.temperature must be between 0 and 2", p.field))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("validation errors in %s:\n  - %s", filename, strings.Join(problems, "\n  - "))
	}
	return nil
}

func knownRating(rating string) bool {
	for _, r := range textfilter.Ratings {
		if strings.EqualFold(r, rating) {
			return true
		}
	}
	return false
}
