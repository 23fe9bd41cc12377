package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/amlscreen/amlreport/pkg/archive"
	"github.com/amlscreen/amlreport/pkg/defaults"
	"github.com/amlscreen/amlreport/pkg/jsonutil"
	"github.com/amlscreen/amlreport/pkg/strutil"
	"github.com/amlscreen/amlreport/pkg/ui"
)

const archiveTimeLayout = "2006-01-02 15:04:05"

func (e env) cmdArchive(args []string) error {
	if len(args) == 0 {
		return usageErrorf("archive: subcommand required (list, get or payload)")
	}
	sub := args[0]
	switch sub {
	case "list", "get", "payload":
	default:
		return usageErrorf("archive: unknown subcommand %q", sub)
	}

	fs := e.flagSet("archive "+sub, "[flags] [record-id]")
	var cf commonFlags
	cf.register(fs)
	db := fs.String("db", "", "Archive database path (required)")
	limit := fs.Int("limit", 0, "Maximum records to list (default 50)")
	asJSON := fs.Bool("json", false, "List as JSON")
	output := fs.String("o", "", "Output file for get (default: the original file name)")
	if err := parse(fs, args[1:]); err != nil {
		return err
	}
	if *db == "" {
		return usageErrorf("archive: -db is required")
	}
	if _, err := cf.setup(e.stderr); err != nil {
		return err
	}
	th, err := cf.theme()
	if err != nil {
		return err
	}

	store, err := archive.Open(*db)
	if err != nil {
		return err
	}
	defer store.Close()
	ctx := context.Background()

	switch sub {
	case "list":
		recs, err := store.List(ctx, *limit)
		if err != nil {
			return err
		}
		if *asJSON {
			if recs == nil {
				recs = []archive.Record{}
			}
			return jsonutil.MarshalWrite(e.stdout, recs, "  ")
		}
		rows := make([]ui.Row, len(recs))
		for i, r := range recs {
			rows[i] = ui.Row{
				ID:       r.ID,
				Created:  r.CreatedAt.Format(archiveTimeLayout),
				ReportID: strutil.Truncate(r.ReportID, 28),
				Wallet:   strings.ToUpper(r.Chain) + ":" + strutil.Abbrev(r.Address, 12),
				Level:    r.Level,
				Score:    r.Score,
				Hash:     r.PDFHash,
			}
		}
		fmt.Fprintln(e.stdout, ui.RenderRecords(th, rows))
		return nil

	case "get", "payload":
		if fs.NArg() != 1 {
			return usageErrorf("archive %s: exactly one record ID is required", sub)
		}
		id := fs.Arg(0)
		if sub == "payload" {
			data, err := store.Payload(ctx, id)
			if err != nil {
				return err
			}
			_, err = e.stdout.Write(data)
			return err
		}
		rec, err := store.Get(ctx, id)
		if err != nil {
			return err
		}
		dest := *output
		if dest == "" {
			dest = defaults.AttachmentName(rec.ReportID, "pdf")
		}
		if err := e.writeOutput(dest, rec.PDF); err != nil {
			return err
		}
		ui.PrintSuccess(e.stderr, "wrote %s (%d bytes, hash %s)", dest, len(rec.PDF), rec.PDFHash)
	}
	return nil
}
