// Package lottery holds the deterministic core of a draw: deriving the final
// seed from public thread data and selecting winning floors from that seed.
// Nothing in this package performs I/O.
package lottery

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"floorlottery/internal/errorx"
	"floorlottery/internal/models"
)

// BeaconConfig identifies a public randomness beacon chain.
type BeaconConfig struct {
	Hash        string
	Period      int64 // seconds between rounds
	GenesisTime int64 // unix seconds
}

// RoundAt returns the beacon round current at t:
// floor((unix(t) - genesis) / period). Times before genesis are rejected.
func (c BeaconConfig) RoundAt(t time.Time) (int64, error) {
	if c.Period <= 0 {
		return 0, errorx.Invariant("drand 周期配置无效: %d", c.Period)
	}

	delta := t.Unix() - c.GenesisTime
	round := delta / c.Period
	if delta%c.Period != 0 && delta < 0 {
		round--
	}
	if round < 0 {
		return 0, errorx.Validation("计算的 drand 轮次无效: %d", round)
	}
	return round, nil
}

// RoundAtTimestamp parses an ISO-8601 timestamp and returns RoundAt.
func (c BeaconConfig) RoundAtTimestamp(ts string) (int64, error) {
	t, err := ParseTimestamp(ts)
	if err != nil {
		return 0, err
	}
	return c.RoundAt(t)
}

// timestampLayouts are tried in order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses the forum's ISO-8601 timestamps, with or without a
// zone and with either 'T' or a space between date and time.
func ParseTimestamp(ts string) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var t time.Time
		if t, err = time.Parse(layout, ts); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errorx.Collaborator(err, "无法解析时间戳 %q", ts)
}

// SeedMaterial is every public fact the final seed commits to.
type SeedMaterial struct {
	WinnersCount   int
	Thread         models.ThreadFacts
	Floors         models.EligibleFloors
	IncludeCreator bool
}

// Content renders the material as the pipe-delimited seed content:
//
//	count|topic|[creator|]created_at|ids|floors|created
//
// with comma-joined lists in their stored order.
func (m SeedMaterial) Content() (string, error) {
	if err := m.Floors.Validate(); err != nil {
		return "", err
	}

	ids := make([]string, len(m.Floors.IDs))
	for i, id := range m.Floors.IDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	numbers := make([]string, len(m.Floors.Numbers))
	for i, n := range m.Floors.Numbers {
		numbers[i] = strconv.Itoa(n)
	}

	fields := []string{strconv.Itoa(m.WinnersCount), m.Thread.TopicID}
	if m.IncludeCreator {
		fields = append(fields, m.Thread.CreatedBy)
	}
	fields = append(fields,
		m.Thread.CreatedAt,
		strings.Join(ids, ","),
		strings.Join(numbers, ","),
		strings.Join(m.Floors.CreatedAt, ","),
	)
	return strings.Join(fields, "|"), nil
}

// ParseContent reads the winner count and the comma-joined floor numbers
// back out of rendered seed content.
func ParseContent(content string) (int, string, error) {
	fields := strings.Split(content, "|")
	if len(fields) < 6 {
		return 0, "", errorx.Invariant("种子内容格式错误")
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, "", errorx.Invariant("种子内容格式错误")
	}
	return count, fields[len(fields)-2], nil
}

// DeriveSeed computes the final seed for m, mixing in beacon when non-nil.
func DeriveSeed(m SeedMaterial, beacon *models.BeaconRound) (string, error) {
	content, err := m.Content()
	if err != nil {
		return "", err
	}
	return SeedFromContent(content, beacon), nil
}

// SeedFromContent hashes already rendered seed content. The MD5, SHA-1 and
// SHA-512 hex digests of content are concatenated, the optional beacon
// "|randomness|round" suffix appended, and the SHA-256 hex digest of the
// result returned.
func SeedFromContent(content string, beacon *models.BeaconRound) string {
	data := []byte(content)
	md5Sum := md5.Sum(data)
	sha1Sum := sha1.Sum(data)
	sha512Sum := sha512.Sum512(data)

	var b strings.Builder
	b.WriteString(hex.EncodeToString(md5Sum[:]))
	b.WriteString(hex.EncodeToString(sha1Sum[:]))
	b.WriteString(hex.EncodeToString(sha512Sum[:]))
	if beacon != nil {
		b.WriteString("|")
		b.WriteString(beacon.Randomness)
		b.WriteString("|")
		b.WriteString(strconv.FormatInt(beacon.Round, 10))
	}

	final := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(final[:])
}
