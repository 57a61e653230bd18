package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/scraploop/scraploop-backend/pkg/config"
	"github.com/scraploop/scraploop-backend/pkg/logger"
)

// Client wraps a Pub/Sub v2 client around the single domain topic and
// subscription this service uses. Resource names are resolved once at
// construction so callers never deal with projects/... paths.
type Client struct {
	client           *pubsub.Client
	topicName        string
	subscriptionName string
}

// NewClient connects to Pub/Sub and verifies the domain subscription exists.
// Topics and subscriptions are provisioned out of band; a missing one is a
// deployment error, not something to create here.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	project := strings.TrimSpace(gcp.ProjectID)
	if project == "" {
		return nil, errors.New("gcp project id is required")
	}
	topic := strings.TrimSpace(cfg.DomainTopic)
	if topic == "" {
		return nil, errors.New("pubsub domain topic is required")
	}
	subscription := strings.TrimSpace(cfg.DomainSubscription)
	if subscription == "" {
		return nil, errors.New("pubsub domain subscription is required")
	}

	inner, err := pubsub.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	c := &Client{
		client:           inner,
		topicName:        qualify(project, "topics", topic),
		subscriptionName: qualify(project, "subscriptions", subscription),
	}

	if err := c.checkSubscription(ctx); err != nil {
		_ = inner.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(ctx, "pubsub client initialized")
	}
	return c, nil
}

// DomainPublisher returns the publisher handle for the domain topic.
func (c *Client) DomainPublisher() *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Publisher(c.topicName)
}

// DomainSubscription returns the subscriber handle for the domain subscription.
func (c *Client) DomainSubscription() *pubsub.Subscriber {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Subscriber(c.subscriptionName)
}

// Ping re-checks that the domain subscription is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("pubsub client not initialized")
	}
	return c.checkSubscription(ctx)
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) checkSubscription(ctx context.Context) error {
	_, err := c.client.SubscriptionAdminClient.GetSubscription(
		ctx,
		&pubsubpb.GetSubscriptionRequest{Subscription: c.subscriptionName},
	)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("subscription %q does not exist", c.subscriptionName)
		}
		return fmt.Errorf("checking subscription %q: %w", c.subscriptionName, err)
	}
	return nil
}

// qualify builds a full resource name, passing through names that already
// carry the projects/ prefix.
func qualify(project, kind, name string) string {
	if strings.HasPrefix(name, "projects/") {
		return name
	}
	return fmt.Sprintf("projects/%s/%s/%s", project, kind, name)
}
