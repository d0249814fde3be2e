package notification

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"

	"github.com/c0xc/dupefinder/pkg/config"
	"github.com/c0xc/dupefinder/pkg/httputils"
	"github.com/c0xc/dupefinder/pkg/logger"
)

// discord caps a single embed at 25 fields
const maxFieldsPerEmbed = 25

const embedColorLightBlue = 0x58b9ff

type discordMessage struct {
	Content interface{}    `json:"content"`
	Embeds  []discordEmbed `json:"embeds,omitempty"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Color       int                 `json:"color"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Footer      discordEmbedFooter  `json:"footer,omitempty"`
	Timestamp   time.Time           `json:"timestamp"`
}

type discordEmbedFooter struct {
	Text string `json:"text"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type discordSender struct {
	log    *logrus.Entry
	config config.NotificationsConfig

	httpClient *http.Client
}

func NewDiscordSender(cfg config.NotificationsConfig) Sender {
	log := logger.GetLogger("notification")

	return &discordSender{
		log:    log.WithField("sender", "discord"),
		config: cfg,
		// webhooks rate-limit aggressively, keep requests slow and retried
		httpClient: httputils.NewRetryableHttpClient(30*time.Second, ratelimit.New(1), log),
	}
}

func (d *discordSender) Name() string {
	return "discord"
}

func (d *discordSender) CanSend() bool {
	return d.config.Service.Discord != ""
}

func (d *discordSender) Send(title string, description string, runTime time.Duration, fields []Field, dryRun bool) error {
	// an empty fields slice means the run found nothing to report
	if len(fields) == 0 && d.config.SkipEmptyRun {
		d.log.Debug("Empty run, skipping notification")
		return nil
	}

	if dryRun {
		title = title + " (Dry Run)"
	}

	if !d.config.Detailed {
		fields = nil
	}
	if len(fields) > maxFieldsPerEmbed {
		fields = fields[:maxFieldsPerEmbed]
	}

	embedFields := make([]discordEmbedField, 0, len(fields))
	for _, field := range fields {
		embedFields = append(embedFields, discordEmbedField{
			Name:   field.Name,
			Value:  field.Value,
			Inline: field.Inline,
		})
	}

	msg := discordMessage{
		Content: nil,
		Embeds: []discordEmbed{
			{
				Title:       title,
				Description: description,
				Color:       embedColorLightBlue,
				Fields:      embedFields,
				Footer: discordEmbedFooter{
					Text: fmt.Sprintf("Runtime: %s", runTime.Truncate(time.Millisecond)),
				},
				Timestamp: time.Now(),
			},
		},
	}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "could not marshal json request")
	}

	return d.sendRequest(jsonData)
}

func (d *discordSender) sendRequest(jsonData []byte) error {
	req, err := http.NewRequest(http.MethodPost, d.config.Service.Discord, bytes.NewBuffer(jsonData))
	if err != nil {
		return errors.Wrap(err, "could not create request")
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := d.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "client request error")
	}
	defer res.Body.Close()

	d.log.Tracef("Discord response status: %d", res.StatusCode)

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusNoContent {
		body, readErr := io.ReadAll(bufio.NewReader(res.Body))
		if readErr != nil {
			return errors.Wrap(readErr, "could not read body")
		}

		return errors.Errorf("unexpected status: %v body: %v", res.StatusCode, string(body))
	}

	d.log.Debug("Notification successfully sent to discord")
	return nil
}
