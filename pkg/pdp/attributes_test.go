package pdp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validAttrs() DiscoveryAttributes {
	a := DefaultDiscoveryAttributes()
	a.ParticipantName = "talker"
	return a
}

func TestValidateAcceptsDefaults(t *testing.T) {
	assert.NoError(t, validAttrs().Validate())
}

func TestValidateRejectsEmptyParticipantName(t *testing.T) {
	a := validAttrs()
	a.ParticipantName = ""
	assert.Error(t, a.Validate())
}

func TestValidateRejectsNonPositiveDurations(t *testing.T) {
	a := validAttrs()
	a.LeaseDuration = 0
	assert.Error(t, a.Validate())

	a = validAttrs()
	a.ResendInterval = -1
	assert.Error(t, a.Validate())
}

func TestValidateRequiresXMLPathForStaticEDP(t *testing.T) {
	a := validAttrs()
	a.UseStaticEDP = true
	assert.Error(t, a.Validate())

	a.StaticEDPXMLPath = "/tmp/static.xml"
	assert.NoError(t, a.Validate())
}

func TestValidateRejectsDynamicEDPWithNoBuiltinPairs(t *testing.T) {
	a := validAttrs()
	a.UsePubWriterSubReader = false
	a.UsePubReaderSubWriter = false
	assert.Error(t, a.Validate())
}
