// Package prompt drives a form interactively on a terminal. The Driver
// interface abstracts the prompt toolkit so sessions can be tested with a
// scripted fake.
package prompt

import (
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted reports that the user interrupted a prompt.
var ErrAborted = errors.New("prompt: aborted")

func normalizeErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

// Driver is the terminal capability set a Session needs.
type Driver interface {
	Input(message, defaultValue, help string) (string, error)
	Password(message, help string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, choices []string, defaultChoice string) (string, error)
	MultiSelect(message string, choices []string, defaults []string) ([]string, error)
	Info(message string)
}

// SurveyDriver implements Driver with survey prompts.
type SurveyDriver struct {
	opts []survey.AskOpt
}

// NewSurveyDriver constructs the default terminal driver.
func NewSurveyDriver(opts ...survey.AskOpt) *SurveyDriver {
	return &SurveyDriver{opts: opts}
}

var _ Driver = (*SurveyDriver)(nil)

func (d *SurveyDriver) Input(message, defaultValue, help string) (string, error) {
	var answer string
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
		Help:    help,
	}
	if err := survey.AskOne(prompt, &answer, d.opts...); err != nil {
		return "", normalizeErr(err)
	}
	return answer, nil
}

func (d *SurveyDriver) Password(message, help string) (string, error) {
	var answer string
	prompt := &survey.Password{
		Message: message,
		Help:    help,
	}
	if err := survey.AskOne(prompt, &answer, d.opts...); err != nil {
		return "", normalizeErr(err)
	}
	return answer, nil
}

func (d *SurveyDriver) Confirm(message string, defaultValue bool) (bool, error) {
	answer := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &answer, d.opts...); err != nil {
		return false, normalizeErr(err)
	}
	return answer, nil
}

func (d *SurveyDriver) Select(message string, choices []string, defaultChoice string) (string, error) {
	var answer string
	prompt := &survey.Select{
		Message: message,
		Options: choices,
	}
	if defaultChoice != "" {
		prompt.Default = defaultChoice
	}
	if err := survey.AskOne(prompt, &answer, d.opts...); err != nil {
		return "", normalizeErr(err)
	}
	return answer, nil
}

func (d *SurveyDriver) MultiSelect(message string, choices []string, defaults []string) ([]string, error) {
	var answer []string
	prompt := &survey.MultiSelect{
		Message: message,
		Options: choices,
		Default: defaults,
	}
	if err := survey.AskOne(prompt, &answer, d.opts...); err != nil {
		return nil, normalizeErr(err)
	}
	return answer, nil
}

func (d *SurveyDriver) Info(message string) {
	fmt.Fprintln(os.Stderr, message)
}
