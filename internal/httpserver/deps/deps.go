package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tabkeep/tabkeep/internal/bridge"
	"github.com/tabkeep/tabkeep/internal/detect"
	"github.com/tabkeep/tabkeep/internal/logger"
	"github.com/tabkeep/tabkeep/internal/reminder"
	"github.com/tabkeep/tabkeep/internal/state"
	redisstore "github.com/tabkeep/tabkeep/internal/store/redis"
	"github.com/tabkeep/tabkeep/internal/tabs"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access the server
	AllowedCIDRS []string         // IPs allowed to access healthz/readyz endpoints
	TrustProxy   bool             // true if running behind a trusted reverse proxy

	RedisClient *redis.Client     // Redis client connection
	Store       *redisstore.Store // persistent collection store

	State     *state.Store        // reactive in-memory snapshot of all collections
	Registry  *tabs.Registry      // live tab classification
	Reminders *reminder.Scheduler // deferral scheduling and reminder fires
	Detector  *detect.Detector    // open-item detection
	Mirror    *bridge.Mirror      // daemon-side picture of browser tabs
	Commands  *bridge.Queue       // outbound commands drained by the agent
	Notifier  *bridge.Notifier    // notification delivery and click routing
	History   *bridge.History     // navigation log behind history search

	ReloadTrigger chan struct{} // channel to trigger manual rules reload
	MainViewURL   string        // triage UI opened from notifications
}
