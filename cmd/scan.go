package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/c0xc/dupefinder/pkg/config"
	"github.com/c0xc/dupefinder/pkg/dupefilemap"
	"github.com/c0xc/dupefinder/pkg/expression"
	"github.com/c0xc/dupefinder/pkg/hasher"
	"github.com/c0xc/dupefinder/pkg/linker"
	"github.com/c0xc/dupefinder/pkg/logger"
	"github.com/c0xc/dupefinder/pkg/notification"
	"github.com/c0xc/dupefinder/pkg/scanner"
)

func ScanCommand() *cobra.Command {
	var (
		flagImportCache    string
		flagExportCache    string
		flagExportHashsums string
		flagLink           bool
		flagIgnoreVanished bool
		flagFatalVanished  bool
		flagQuiet          bool
		flagHideSummary    bool
		flagAlgorithms     []string
		flagExcludes       []string

		flagMD5    bool
		flagSHA1   bool
		flagSHA224 bool
		flagSHA256 bool
		flagSHA384 bool
		flagSHA512 bool
	)

	command := &cobra.Command{
		Use:   "scan DIRECTORY",
		Short: "Find duplicate files below a directory",
		Long: `Walks the given directory, digests every regular file and lists groups
of identical files. Hardlinked paths are recognized as one file. With
--link, every duplicate is replaced by a hardlink to the first file of
its group.

Exit status: 0 when no duplicates were found, 2 when duplicate groups
were found but nothing was replaced, 4 when at least one duplicate was
replaced by a hardlink.`,
		Example: `  dupefinder scan /storage/photos
  dupefinder scan --sha256 --export-cache hashes.json /storage/photos
  dupefinder scan --import-cache hashes.json --link /storage/photos`,

		Args: cobra.ExactArgs(1),
	}

	command.Flags().StringVar(&flagImportCache, "import-cache", "", "Import digest cache from FILE")
	command.Flags().StringVar(&flagExportCache, "export-cache", "", "Export digest cache to FILE")
	command.Flags().StringVar(&flagExportHashsums, "export-hashsums", "", "Export digest list to FILE (\"-\" = stdout, implies --quiet)")
	command.Flags().BoolVar(&flagLink, "link", false, "Replace duplicates with hardlinks")
	command.Flags().BoolVar(&flagIgnoreVanished, "ignore-vanished", false, "Silently skip files that vanish during the scan")
	command.Flags().BoolVar(&flagFatalVanished, "fatal-vanished", false, "Abort when a file vanishes during the scan")
	command.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "Do not list duplicate groups")
	command.Flags().BoolVar(&flagHideSummary, "hide-summary", false, "Do not print the summary")
	command.Flags().BoolVar(&flagMD5, "md5", false, "Digest files with MD5")
	command.Flags().BoolVar(&flagSHA1, "sha1", false, "Digest files with SHA1")
	command.Flags().BoolVar(&flagSHA224, "sha224", false, "Digest files with SHA224")
	command.Flags().BoolVar(&flagSHA256, "sha256", false, "Digest files with SHA256")
	command.Flags().BoolVar(&flagSHA384, "sha384", false, "Digest files with SHA384")
	command.Flags().BoolVar(&flagSHA512, "sha512", false, "Digest files with SHA512")
	command.Flags().StringSliceVar(&flagAlgorithms, "algorithm", nil,
		fmt.Sprintf("Digest files with the named algorithm (%s)", strings.Join(hasher.AlgorithmNames(), ", ")))
	command.Flags().StringSliceVar(&flagExcludes, "exclude", nil, "Exclude paths matching GLOB")

	command.Run = func(cmd *cobra.Command, args []string) {
		start := time.Now()

		// init core
		if !initialized {
			initCore(true)
			initialized = true
		}

		// set log
		log := logger.GetLogger("scan")

		noti := notification.NewDiscordSender(config.Config.Notifications)

		if flagIgnoreVanished && flagFatalVanished {
			log.Fatal("--ignore-vanished and --fatal-vanished are mutually exclusive")
		}

		policy := hasher.VanishedWarn
		switch {
		case flagIgnoreVanished:
			policy = hasher.VanishedIgnore
		case flagFatalVanished:
			policy = hasher.VanishedFatal
		}

		// the digest list may go to stdout, keep it clean
		if flagExportHashsums != "" {
			flagQuiet = true
		}

		// resolve digest algorithms, the first selected one is primary
		selected := make([]string, 0, 8)
		for _, toggle := range []struct {
			name    string
			enabled bool
		}{
			{"MD5", flagMD5},
			{"SHA1", flagSHA1},
			{"SHA224", flagSHA224},
			{"SHA256", flagSHA256},
			{"SHA384", flagSHA384},
			{"SHA512", flagSHA512},
		} {
			if toggle.enabled {
				selected = append(selected, toggle.name)
			}
		}
		selected = append(selected, flagAlgorithms...)

		algorithms, err := hasher.ResolveAlgorithms(selected, config.Config.DefaultAlgorithm)
		if err != nil {
			log.WithError(err).Fatal("Failed resolving digest algorithms")
		}

		// compile ignore filters from the config
		filters, err := expression.Compile(config.Config.Filters.Ignore)
		if err != nil {
			log.WithError(err).Fatal("Failed compiling ignore filters")
		}

		excludes := append([]string{}, config.Config.Filters.ExcludePaths...)
		excludes = append(excludes, flagExcludes...)

		// scan
		searchDir := args[0]

		s := scanner.New(scanner.Config{
			ExcludePaths: excludes,
			Filters:      filters,
		})

		records, err := s.Scan(searchDir)
		if err != nil {
			log.WithError(err).Fatalf("Failed scanning: %q", searchDir)
		}

		log.Infof("Scanned %d file(s) in %q", len(records), searchDir)

		// import digest cache
		cache := hasher.NewDigestCache()
		if flagImportCache != "" {
			if err := cache.ImportFile(flagImportCache); err != nil {
				log.WithError(err).Fatalf("Failed importing digest cache: %q", flagImportCache)
			}

			log.Infof("Imported digest cache with %d record(s): %q", cache.Len(), flagImportCache)
		}

		// digest files
		h := hasher.New(algorithms, cache, policy, config.Config.Workers)

		records, err = h.HashAll(records)
		if err != nil {
			log.WithError(err).Fatal("Failed digesting files")
		}

		// export digest cache
		if flagExportCache != "" {
			if err := h.Snapshot().ExportFile(flagExportCache); err != nil {
				log.WithError(err).Fatalf("Failed exporting digest cache: %q", flagExportCache)
			}

			log.Infof("Exported digest cache: %q", flagExportCache)
		}

		// export digest list
		if flagExportHashsums != "" {
			log.Debugf("Exporting digest list: %q", flagExportHashsums)

			if err := exportHashsums(flagExportHashsums, records, algorithms[0].Name); err != nil {
				log.WithError(err).Fatalf("Failed exporting digest list: %q", flagExportHashsums)
			}
		}

		// group duplicates
		dfm, err := dupefilemap.New(records, algorithms[0].Name)
		if err != nil {
			log.WithError(err).Fatal("Failed grouping duplicates")
		}

		// list groups, optionally replacing duplicates
		lnk := linker.New(FlagDryRun)

		rc := 0
		for _, group := range dfm.Groups() {
			if rc == 0 {
				rc = 2
			}

			canonical := group.Canonical()

			if !flagQuiet {
				fmt.Printf("[%s]\n", group.Digest)
				fmt.Printf("* %s\n", canonical.Path)
			}

			for _, duplicate := range group.Duplicates() {
				if !flagQuiet {
					fmt.Printf("- %s\n", duplicate.Path)
				}

				if !flagLink {
					continue
				}

				if !flagQuiet {
					fmt.Printf("    REPLACING #%d ...\n", duplicate.ID.Inode)
				}

				if err := lnk.Replace(canonical, duplicate); err != nil {
					log.WithError(err).Fatalf("Failed replacing duplicate: %q", duplicate.Path)
				}

				if !FlagDryRun {
					rc = 4
				}
			}

			if !flagQuiet {
				fmt.Println()
			}
		}

		// show summary
		if !flagQuiet && !flagHideSummary {
			var totalSize int64
			for _, record := range records {
				totalSize += record.Size
			}

			fmt.Printf("Files (scanned):\t%d\n", len(records))
			if imported := len(h.ImportedFiles()); imported > 0 {
				fmt.Printf("Files (imported):\t%d\n", imported)
			}
			fmt.Printf("Total size:\t\t%s (%d B)\n", humanize.IBytes(uint64(totalSize)), totalSize)
			fmt.Printf("Duplicate groups:\t%d\n", dfm.Length())
			fmt.Printf("Total wasted space:\t%s (%d B)\n",
				humanize.IBytes(uint64(dfm.TotalWasted())), dfm.TotalWasted())
			fmt.Printf("Replaced files:\t\t%d\n", lnk.ReplacedFiles())
		}

		if noti.CanSend() {
			var fields []notification.Field
			if dfm.Length() > 0 {
				fields = append(fields,
					notification.Field{Name: "Duplicate groups", Value: fmt.Sprintf("%d", dfm.Length()), Inline: true},
					notification.Field{Name: "Wasted space", Value: humanize.IBytes(uint64(dfm.TotalWasted())), Inline: true},
				)

				if flagLink {
					fields = append(fields,
						notification.Field{Name: "Replaced files", Value: fmt.Sprintf("%d", lnk.ReplacedFiles()), Inline: true},
						notification.Field{Name: "Reclaimed space", Value: humanize.IBytes(uint64(lnk.ReclaimedBytes())), Inline: true},
					)
				}
			}

			sendErr := noti.Send(
				"Scan",
				fmt.Sprintf("Scanned **%d** files in %q | Found **%d** duplicate groups",
					len(records), searchDir, dfm.Length()),
				time.Since(start),
				fields,
				FlagDryRun,
			)
			if sendErr != nil {
				log.WithError(sendErr).Error("Failed sending notification")
			}
		} else {
			log.Debug("Notifications disabled, skipping...")
		}

		if rc > 0 {
			os.Exit(rc)
		}
	}

	return command
}

// exportHashsums writes one "<digest>\t<path>" line per record, "-" writes
// to stdout.
func exportHashsums(destination string, records []*config.FileRecord, algorithm string) error {
	if destination == "-" {
		return writeHashsums(os.Stdout, records, algorithm)
	}

	f, err := os.Create(destination)
	if err != nil {
		return errors.Wrapf(err, "create file: %s", destination)
	}

	if err := writeHashsums(f, records, algorithm); err != nil {
		f.Close()
		return err
	}

	return errors.Wrapf(f.Close(), "close file: %s", destination)
}

func writeHashsums(w io.Writer, records []*config.FileRecord, algorithm string) error {
	for _, record := range records {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", record.Digests[algorithm], record.Path); err != nil {
			return errors.Wrap(err, "write digest list")
		}
	}

	return nil
}
