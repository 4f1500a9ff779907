package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"shopping-list/internal/certs"
	"shopping-list/internal/logger"
)

func main() {
	dir := flag.String("dir", "certs", "output directory")
	force := flag.Bool("force", false, "overwrite existing certificate files")
	flag.Parse()

	logger.Init("gencert")
	ctx := context.Background()

	cert, err := certs.Generate(certs.Options{
		CertFile: filepath.Join(*dir, "cert.pem"),
		KeyFile:  filepath.Join(*dir, "key.pem"),
		Force:    *force,
	})
	if err != nil {
		logger.Error(ctx, err, "certificate not generated")
		os.Exit(1)
	}

	logger.Info(ctx, "self-signed certificate written",
		"dir", *dir,
		"expires", cert.NotAfter.Format("2006-01-02"),
	)
	fmt.Println("Browsers will warn about the self-signed certificate; accept it for local use.")
}
