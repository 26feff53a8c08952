package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValid("buyer"))
	assert.True(t, IsValid(Admin))
	assert.False(t, IsValid("staff"))

	assert.True(t, Buyer.IsSelfRegistrable())
	assert.True(t, Seller.IsSelfRegistrable())
	assert.False(t, Admin.IsSelfRegistrable())
	assert.False(t, Role("").IsSelfRegistrable())
}
