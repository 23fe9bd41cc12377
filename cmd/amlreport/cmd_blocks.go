package main

import (
	"context"

	"github.com/amlscreen/amlreport/pkg/jsonutil"
	"github.com/amlscreen/amlreport/pkg/pipeline"
)

func (e env) cmdBlocks(args []string) error {
	fs := e.flagSet("blocks", "[flags] input.json")
	var cf commonFlags
	cf.register(fs)
	derive := fs.Bool("derive", false, "Derive absent compliance records from the report")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageErrorf("blocks: exactly one input is required")
	}

	logger, err := cf.setup(e.stderr)
	if err != nil {
		return err
	}
	th, err := cf.theme()
	if err != nil {
		return err
	}
	data, err := e.readInput(fs.Arg(0))
	if err != nil {
		return err
	}

	p := pipeline.New(pipeline.Options{Theme: th, Logger: logger})
	res, err := p.Run(context.Background(), pipeline.Request{Input: data, Format: pipeline.FormatBlocks, Derive: *derive})
	if err != nil {
		return err
	}
	_, err = e.stdout.Write(res.Output)
	return err
}

func (e env) cmdAssess(args []string) error {
	fs := e.flagSet("assess", "[flags] input.json")
	var cf commonFlags
	cf.register(fs)
	bundle := fs.Bool("bundle", false, "Print {report, compliance}, ready for render")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageErrorf("assess: exactly one input is required")
	}

	logger, err := cf.setup(e.stderr)
	if err != nil {
		return err
	}
	data, err := e.readInput(fs.Arg(0))
	if err != nil {
		return err
	}

	p := pipeline.New(pipeline.Options{Logger: logger})
	payload, c, err := p.Assess(context.Background(), data)
	if err != nil {
		return err
	}
	if *bundle {
		return jsonutil.MarshalWrite(e.stdout, map[string]any{
			"report":     payload.RawReport(),
			"compliance": c,
		}, "  ")
	}
	return jsonutil.MarshalWrite(e.stdout, c, "  ")
}
