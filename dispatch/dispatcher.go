package dispatch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bitbucket.org/jjfidc/boletos_backend/utils"
	"github.com/sirupsen/logrus"
)

// Dispatcher delivers composed packets. The preview implementation writes
// them to disk for human review; a transport-backed one can slot in without
// touching composition.
type Dispatcher interface {
	Dispatch(p *Packet) error
}

// PreviewDispatcher renders each packet into its own directory: the HTML
// body plus a manifest of recipients and attachments. Nothing leaves the
// machine.
type PreviewDispatcher struct {
	Dir    string
	Logger *logrus.Logger
}

type previewManifest struct {
	To          []string `json:"to"`
	CC          []string `json:"cc"`
	Subject     string   `json:"subject"`
	Attachments []string `json:"attachments"`
}

func (d *PreviewDispatcher) Dispatch(p *Packet) error {
	dir := filepath.Join(d.Dir, previewDirName(p))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(dir, "body.html"), []byte(p.HTMLBody), 0644); err != nil {
		return err
	}
	manifest := previewManifest{
		To:          p.To,
		CC:          p.CC,
		Subject:     p.Subject,
		Attachments: p.Attachments,
	}
	if err := utils.WriteJSONFile(filepath.Join(dir, "manifest.json"), manifest); err != nil {
		return err
	}

	d.Logger.WithFields(logrus.Fields{
		"to":          p.To,
		"subject":     p.Subject,
		"attachments": len(p.Attachments),
		"dir":         dir,
	}).Info("packet rendered for preview")
	return nil
}

func previewDirName(p *Packet) string {
	name := p.Group.PayerDisplay
	if name == "" {
		name = "SEM_PAGADOR"
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', '*', '?', ':', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, name)
	return strings.TrimSpace(name)
}

// MoveSentSlips moves a dispatched group's slip files into the sent folder.
// Production mode only; preview leaves the inbox untouched so the operator
// can re-run.
func MoveSentSlips(logger *logrus.Logger, p *Packet, sentDir string) error {
	if err := os.MkdirAll(sentDir, 0755); err != nil {
		return err
	}
	var firstErr error
	for _, pair := range p.Group.Pairs {
		src := pair.Slip.FileRef
		dst := filepath.Join(sentDir, filepath.Base(src))
		if err := os.Rename(src, dst); err != nil {
			logger.WithFields(logrus.Fields{
				"file": src,
			}).Warn(fmt.Sprintf("could not move sent slip: %v", err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
	}
	return firstErr
}
