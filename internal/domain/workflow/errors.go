package workflow

import (
	"fmt"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

// ErrInvalidTransition is returned when a trigger is not permitted from the current state
var ErrInvalidTransition = fmt.Errorf("%w: transition not permitted", entity.ErrInvalidState)
