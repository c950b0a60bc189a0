package main

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

var errAborted = errors.New("prompt aborted")

type inputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

// promptDriver abstracts the terminal so the render flow can be tested
// without one.
type promptDriver interface {
	Input(ctx context.Context, cfg inputConfig) (string, error)
}

type surveyDriver struct{}

func newSurveyDriver() promptDriver {
	return surveyDriver{}
}

func (surveyDriver) Input(ctx context.Context, cfg inputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{
		Message: cfg.Message,
		Help:    cfg.Help,
		Default: cfg.Default,
	}
	var opts []survey.AskOpt
	if cfg.Validator != nil {
		opts = append(opts, survey.WithValidator(func(ans any) error {
			value, _ := ans.(string)
			return cfg.Validator(value)
		}))
	}
	if err := survey.AskOne(prompt, &out, opts...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errAborted
	}
	return err
}
