package service

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	perr "cintel/internal/platform/errors"
	"cintel/internal/services/ingest/domain"
)

// LoadSources reads the subscription document from path
func LoadSources(path string) (domain.Sources, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Sources{}, perr.Wrap(err, perr.ErrorCodeNotFound, "open sources file")
	}
	defer f.Close()
	return ParseSources(f)
}

// ParseSources decodes a subscription document from r
func ParseSources(r io.Reader) (domain.Sources, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return domain.Sources{}, perr.Wrap(err, perr.ErrorCodeUnknown, "read sources file")
	}
	var src domain.Sources
	if err := yaml.Unmarshal(raw, &src); err != nil {
		return domain.Sources{}, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "parse sources file")
	}
	for _, f := range src.Feeds {
		if f.Name == "" || f.URL == "" || !f.Source.Valid() {
			return domain.Sources{}, perr.InvalidArgf("feed %q needs a name, url and valid source", f.Name)
		}
	}
	for _, rw := range src.Repos {
		if rw.Owner == "" || rw.Name == "" || rw.Project == "" {
			return domain.Sources{}, perr.InvalidArgf("repo %q/%q needs owner, name and project", rw.Owner, rw.Name)
		}
	}
	return src, nil
}
