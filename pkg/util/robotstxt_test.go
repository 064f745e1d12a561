package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const robotsFixture = `User-agent: *
Disallow: /private/

User-agent: Archiver
Disallow: /archive-me-not/
`

func TestGetDomainFromURL(t *testing.T) {
	domain, err := GetDomainFromURL("https://example.com/some/deep/page.html?q=1")
	assert.NoError(t, err)
	assert.Equal(t, "https://example.com", domain)
}

func TestIsAllowedByRobotsTXT(t *testing.T) {
	assert.True(t, IsAllowedByRobotsTXT(robotsFixture, "https://example.com/public/page", "Archiver"))
	assert.False(t, IsAllowedByRobotsTXT(robotsFixture, "https://example.com/archive-me-not/page", "Archiver"))
	assert.False(t, IsAllowedByRobotsTXT(robotsFixture, "https://example.com/private/page", "SomeoneElse"))
}

func TestIsAllowedByRobotsTXTUnparseable(t *testing.T) {
	// Garbage robots.txt means no restrictions.
	assert.True(t, IsAllowedByRobotsTXT("\x00\x01", "https://example.com/", "Archiver"))
}
