// Package printing renders HTML to PDF through headless Chrome and uses it
// to export the General Info summary of a PRO.
//
// Example usage:
//
//	renderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
//	    DefaultTimeout: 30 * time.Second,
//	    NoSandbox:      true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer renderer.Close()
//
//	exporter, err := printing.NewGeneralInfoExporter(renderer, 0)
//	pdf, err := exporter.GeneralInfoPDF(ctx, summary)
package printing
