package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Config потолки и окна лимитера. Окна фиксированные, не скользящие;
// счетчики живут в redis с TTL до границы окна и утилизируются лениво,
// отдельный процесс чистки не нужен.
type Config struct {
	// PerIPCeiling потолок запросов с одного IP за окно.
	PerIPCeiling int
	// PerSubjectCeiling потолок запросов по одному субъекту за окно.
	PerSubjectCeiling int
	// Window длительность фиксированного окна.
	Window time.Duration
	// Cooldown минимальный интервал между запросами, поверх остальных
	// измерений. Ноль — выключен.
	Cooldown time.Duration
}

func (c *Config) setDefaults() {
	if c.PerIPCeiling <= 0 {
		c.PerIPCeiling = 5
	}
	if c.PerSubjectCeiling <= 0 {
		c.PerSubjectCeiling = 3
	}
	if c.Window <= 0 {
		c.Window = time.Hour
	}
}

// checkScript атомарный check-and-increment по всем измерениям сразу.
// Сначала проверяются все счетчики и кулдаун, и только если запас есть везде,
// инкрементируются все разом: отклоненный запрос не тратит квоту ни в одном
// измерении. Возвращает -1 (разрешено) либо минимальный retry_after в мс
// среди отказавших измерений.
//
// KEYS[1..n] — счетчики, KEYS[n+1] — ключ кулдауна.
// ARGV[1] — n, далее по тройке на счетчик (потолок, retry мс, ttl мс),
// последним — кулдаун в мс (0 — выключен).
var checkScript = redis.NewScript(`
local n = tonumber(ARGV[1])
local retry = -1

for i = 1, n do
	local ceiling = tonumber(ARGV[1 + (i-1)*3 + 1])
	local retryMs = tonumber(ARGV[1 + (i-1)*3 + 2])
	local count = tonumber(redis.call('GET', KEYS[i]) or '0')
	if count >= ceiling then
		if retry == -1 or retryMs < retry then
			retry = retryMs
		end
	end
end

local cooldownMs = tonumber(ARGV[1 + n*3 + 1])
if cooldownMs > 0 then
	local ttl = redis.call('PTTL', KEYS[n+1])
	if ttl > 0 then
		if retry == -1 or ttl < retry then
			retry = ttl
		end
	end
end

if retry >= 0 then
	return retry
end

for i = 1, n do
	local ttlMs = tonumber(ARGV[1 + (i-1)*3 + 3])
	local count = redis.call('INCR', KEYS[i])
	if count == 1 then
		redis.call('PEXPIRE', KEYS[i], ttlMs)
	end
end
if cooldownMs > 0 then
	redis.call('SET', KEYS[n+1], '1', 'PX', cooldownMs)
end
return -1
`)

// LimitedError отказ лимитера с подсказкой, когда повторять.
type LimitedError struct {
	RetryAfter time.Duration
}

func (e *LimitedError) Error() string {
	return fmt.Sprintf("[ratelimit]: limit exceeded, retry after %s", e.RetryAfter)
}

// ErrUnavailable redis недоступен; пропускать или отклонять — политика вызывающего.
var ErrUnavailable = errors.New("[ratelimit]: backend unavailable")

// Limiter лимитер чувствительных операций (создание ссылки с пользовательским
// кодом, выдача recovery-токенов). Счетчики в redis, потому что сервис
// работает в несколько инстансов и check-then-act в памяти процесса ничего
// не гарантирует.
type Limiter struct {
	rdb    redis.UniversalClient
	cfg    Config
	logger *logrus.Entry
	now    func() time.Time
}

func New(rdb redis.UniversalClient, cfg Config, logger *logrus.Logger) *Limiter {
	cfg.setDefaults()
	return &Limiter{
		rdb:    rdb,
		cfg:    cfg,
		logger: logger.WithField("module", "ratelimit"),
		now:    time.Now,
	}
}

// CheckAndIncrement проверяет все настроенные измерения и, только если запас
// есть в каждом, атомарно инкрементирует их все. Отказ — *LimitedError с
// минимальным retry_after среди отказавших измерений.
//
// Пустой ip или subject исключает соответствующее измерение (анонимное
// создание лимитируется только по IP). Кулдаун ключуется по субъекту, а при
// его отсутствии — по IP.
func (l *Limiter) CheckAndIncrement(ctx context.Context, ip, subject string) error {
	now := l.now().UTC()
	windowStart := now.Truncate(l.cfg.Window)
	remaining := windowStart.Add(l.cfg.Window).Sub(now)
	remainingMs := remaining.Milliseconds()
	if remainingMs < 1 {
		remainingMs = 1
	}

	var keys []string
	args := []interface{}{0} // ARGV[1] заполним числом счетчиков ниже

	if ip != "" {
		keys = append(keys, fmt.Sprintf("ratelimit:ip:%s:%d", ip, windowStart.Unix()))
		args = append(args, l.cfg.PerIPCeiling, remainingMs, remainingMs)
	}
	if subject != "" {
		keys = append(keys, fmt.Sprintf("ratelimit:subject:%s:%d", subject, windowStart.Unix()))
		args = append(args, l.cfg.PerSubjectCeiling, remainingMs, remainingMs)
	}
	if len(keys) == 0 {
		// Лимитировать нечего — ни одного ключевого измерения.
		return nil
	}
	args[0] = len(keys)

	cooldownSubject := subject
	if cooldownSubject == "" {
		cooldownSubject = ip
	}
	keys = append(keys, "ratelimit:cooldown:"+cooldownSubject)
	args = append(args, l.cfg.Cooldown.Milliseconds())

	res, err := checkScript.Run(ctx, l.rdb, keys, args...).Int64()
	if err != nil {
		l.logger.WithError(err).Error("rate limit check failed")
		return errors.Wrap(ErrUnavailable, err.Error())
	}
	if res >= 0 {
		return &LimitedError{RetryAfter: time.Duration(res) * time.Millisecond}
	}
	return nil
}
