package socialgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jpfraneto/rebrnd-backend-sub000/internal/config"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/utils"
	"go.uber.org/zap"
)

const defaultBulkUserLimit = 100

var backoffSchedule = []time.Duration{
	1 * time.Second,
	3 * time.Second,
	10 * time.Second,
}

// UserProfile is the subset of the provider's user object the airdrop engine
// cares about.
type UserProfile struct {
	Fid               uint64   `json:"fid"`
	Username          string   `json:"username"`
	FollowerCount     int      `json:"follower_count"`
	VerifiedAddresses []string `json:"verified_addresses"`
	Score             float64  `json:"score"`
	ProSubscriber     bool     `json:"pro_subscriber"`
}

// ChannelEngagement describes a user's relationship to the configured channel.
type ChannelEngagement struct {
	Following bool `json:"following"`
	CastCount int  `json:"cast_count"`
}

type usersResponse struct {
	Users []*UserProfile `json:"users"`
}

type Client struct {
	httpClient *http.Client
	Logger     *zap.Logger
	Config     *config.SocialGraphConfig
}

func NewClient(hc *http.Client, l *zap.Logger, cfg *config.SocialGraphConfig) *Client {
	return &Client{
		httpClient: hc,
		Logger:     l,
		Config:     cfg,
	}
}

func (c *Client) bulkUserLimit() int {
	if c.Config.BulkUserLimit > 0 {
		return c.Config.BulkUserLimit
	}
	return defaultBulkUserLimit
}

func (c *Client) makeRequest(ctx context.Context, path string, values url.Values, out interface{}) error {
	if c.Config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Config.RequestTimeout)
		defer cancel()
	}

	fullUrl := fmt.Sprintf("%s%s?%s", strings.TrimSuffix(c.Config.BaseUrl, "/"), path, values.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullUrl, http.NoBody)
	if err != nil {
		c.Logger.Sugar().Errorw("Failed to create the social graph HTTP request",
			zap.Error(err),
		)
		return err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", c.Config.ApiKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		c.Logger.Sugar().Errorw("Failed to perform the social graph HTTP request",
			zap.Error(err),
		)
		return err
	}
	defer res.Body.Close()

	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		c.Logger.Sugar().Errorw("Failed to read the social graph HTTP response",
			zap.Error(err),
		)
		return err
	}

	if res.StatusCode == http.StatusTooManyRequests {
		return errRateLimited
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("social graph response status %d %s", res.StatusCode, res.Status)
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		c.Logger.Sugar().Errorw("Failed to parse json from the social graph response",
			zap.Error(err),
		)
		return err
	}
	return nil
}

var errRateLimited = fmt.Errorf("social graph rate limit reached")

func (c *Client) makeRequestWithBackoff(ctx context.Context, path string, values url.Values, out interface{}) error {
	var err error
	for _, backoff := range backoffSchedule {
		err = c.makeRequest(ctx, path, values, out)
		if err == nil {
			return nil
		}
		if err != errRateLimited {
			return err
		}
		c.Logger.Info("Rate limit reached, backing off",
			zap.Duration("backoff", backoff),
		)
		time.Sleep(backoff)
	}
	return fmt.Errorf("failed to make the social graph request after backoff: %w", err)
}

// GetUser fetches a single user profile.
func (c *Client) GetUser(ctx context.Context, fid uint64) (*UserProfile, error) {
	users, err := c.GetUsersBulk(ctx, []uint64{fid})
	if err != nil {
		return nil, err
	}
	user, ok := users[fid]
	if !ok {
		return nil, fmt.Errorf("user %d not found", fid)
	}
	return user, nil
}

// GetUsersBulk fetches profiles for a set of fids, chunking requests to the
// provider's per-call identifier cap.
func (c *Client) GetUsersBulk(ctx context.Context, fids []uint64) (map[uint64]*UserProfile, error) {
	users := make(map[uint64]*UserProfile, len(fids))

	for _, chunk := range utils.Chunk(fids, c.bulkUserLimit()) {
		fidStrings := utils.Map(chunk, func(fid uint64, i uint64) string {
			return strconv.FormatUint(fid, 10)
		})

		values := url.Values{}
		values.Set("fids", strings.Join(fidStrings, ","))

		response := &usersResponse{}
		if err := c.makeRequestWithBackoff(ctx, "/v2/user/bulk", values, response); err != nil {
			return nil, err
		}

		for _, user := range response.Users {
			users[user.Fid] = user
		}
	}
	return users, nil
}

// GetChannelEngagement fetches the user's follow and cast activity in the
// configured channel.
func (c *Client) GetChannelEngagement(ctx context.Context, fid uint64) (*ChannelEngagement, error) {
	values := url.Values{}
	values.Set("fid", strconv.FormatUint(fid, 10))
	values.Set("channel_id", c.Config.ChannelId)

	engagement := &ChannelEngagement{}
	if err := c.makeRequestWithBackoff(ctx, "/v2/channel/member", values, engagement); err != nil {
		return nil, err
	}
	return engagement, nil
}
