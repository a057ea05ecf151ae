package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/magda-tunes-go/agents/coordination"
	"github.com/Conceptual-Machines/magda-tunes-go/moods"
	"github.com/Conceptual-Machines/magda-tunes-go/synth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// errInvalidChoice is reported for any menu answer that is not a listed number
var errInvalidChoice = errors.New("invalid choice")

var titleCaser = cases.Title(language.AmericanEnglish)

// menuLabel turns "retro_synth" into "Retro Synth"
func menuLabel(id string) string {
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}

// promptRequest asks for instrument, mood and duration on in and echoes menus to out
func promptRequest(in io.Reader, out io.Writer) (coordination.Request, error) {
	scanner := bufio.NewScanner(in)

	instruments := synth.Instruments()
	fmt.Fprintln(out, "\nChoose an instrument sound:")
	for i, inst := range instruments {
		fmt.Fprintf(out, "%d. %s\n", i+1, menuLabel(string(inst)))
	}
	instIdx, err := readChoice(scanner, out, len(instruments))
	if err != nil {
		return coordination.Request{}, err
	}

	moodNames := moods.Names()
	fmt.Fprintln(out, "\nChoose a mood:")
	for i, name := range moodNames {
		fmt.Fprintf(out, "%d. %s\n", i+1, menuLabel(name))
	}
	moodIdx, err := readChoice(scanner, out, len(moodNames))
	if err != nil {
		return coordination.Request{}, err
	}

	fmt.Fprint(out, "\nEnter desired duration in seconds (e.g., 60): ")
	line, err := readLine(scanner)
	if err != nil {
		return coordination.Request{}, err
	}
	seconds, err := strconv.Atoi(line)
	if err != nil || seconds <= 0 {
		return coordination.Request{}, fmt.Errorf("%w: duration %q", errInvalidChoice, line)
	}

	return coordination.Request{
		Mood:       moodNames[moodIdx],
		Instrument: string(instruments[instIdx]),
		Duration:   float64(seconds),
	}, nil
}

// readChoice reads a 1-based menu number and returns the 0-based index
func readChoice(scanner *bufio.Scanner, out io.Writer, n int) (int, error) {
	fmt.Fprint(out, "> ")
	line, err := readLine(scanner)
	if err != nil {
		return 0, err
	}
	choice, err := strconv.Atoi(line)
	if err != nil || choice < 1 || choice > n {
		return 0, fmt.Errorf("%w: %q", errInvalidChoice, line)
	}
	return choice - 1, nil
}

func readLine(scanner *bufio.Scanner) (string, error) {
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(scanner.Text()), nil
}
