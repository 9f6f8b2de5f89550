package firebase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	firebase "firebase.google.com/go"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

var unsafeSegment = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeSegment makes s safe to use as one element of an object path.
func sanitizeSegment(s string) string {
	sanitized := unsafeSegment.ReplaceAllString(s, "_")

	if len(sanitized) > 100 {
		sanitized = sanitized[:100]
	}

	if sanitized == "" || sanitized == "." || sanitized == ".." {
		sanitized = "_"
	}

	return sanitized
}

// Init creates the Firebase app. credentials is either inline service
// account JSON or a path to a credentials file; empty means application
// default credentials.
func Init(ctx context.Context, credentials string, log *zap.Logger) (*firebase.App, error) {
	var opts []option.ClientOption

	switch {
	case strings.HasPrefix(credentials, "{"):
		log.Info("using Firebase credentials from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(credentials)))
	case credentials != "":
		log.Info("using Firebase credentials from file", zap.String("path", credentials))
		opts = append(opts, option.WithCredentialsFile(credentials))
	default:
		log.Warn("GOOGLE_APPLICATION_CREDENTIALS not set, using default credentials")
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase init failed: %w", err)
	}

	log.Info("Firebase initialized")
	return app, nil
}
