// Package display writes the user facing parts of adl runs that are not
// log lines: load progress, warnings and the notice about skipped base_
// fragment documents.
//
// Output is coloured only when the writer is a terminal:
//
//	progress := display.NewProgressIndicator(os.Stdout, len(files))
//	progress.Start()
//	for _, f := range files {
//	    progress.Step(f)
//	}
//	progress.Complete()
//
//	display.Warning{
//	    Title: "Unresolved references",
//	    Items: []string{"#late_fees"},
//	}.Display(os.Stderr)
package display
