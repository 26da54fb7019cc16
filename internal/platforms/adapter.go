package platforms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/postwavehq/postwave/internal/models"
	"github.com/postwavehq/postwave/internal/transfer"
)

// ErrPublishingUnsupported marks a platform we can connect but not post to.
// TikTok only has the connect/identity half of its integration.
var ErrPublishingUnsupported = errors.New("publishing not supported for platform")

// PublishResult is the only way an adapter reports platform-side rejection.
// Rate limits, content policy and invalid tokens all land here as
// Success=false so a batch can record them without aborting.
type PublishResult struct {
	Success      bool
	ExternalID   string
	ErrorMessage string
}

func publishFailure(format string, args ...interface{}) *PublishResult {
	return &PublishResult{Success: false, ErrorMessage: fmt.Sprintf(format, args...)}
}

// Adapter publishes on behalf of one linked account. Implementations absorb
// every protocol quirk; the gateway never branches on platform.
type Adapter interface {
	Publish(ctx context.Context, text string, mediaURLs []string) *PublishResult
	Metrics(ctx context.Context, externalID string) (*transfer.PostMetrics, error)
}

// Resolver lets the gateway be tested against fake adapters.
type Resolver interface {
	Resolve(account *models.LinkedAccount, accessToken string) (Adapter, error)
}

type registry struct{}

// NewResolver returns the production adapter table.
func NewResolver() Resolver { return registry{} }

func (registry) Resolve(account *models.LinkedAccount, accessToken string) (Adapter, error) {
	switch strings.ToLower(account.Platform) {
	case models.PlatformTwitter:
		return NewTwitterAdapter(accessToken), nil
	case models.PlatformFacebook:
		return NewFacebookAdapter(accessToken, account.Metadata[models.MetadataPageID]), nil
	case models.PlatformLinkedin:
		return NewLinkedinAdapter(accessToken, account.Metadata[models.MetadataPersonURN]), nil
	case models.PlatformInstagram:
		return NewInstagramAdapter(accessToken, account.AccountID), nil
	case models.PlatformTiktok:
		return nil, fmt.Errorf("%w: %s", ErrPublishingUnsupported, account.Platform)
	default:
		return nil, fmt.Errorf("unknown platform: %s", account.Platform)
	}
}
