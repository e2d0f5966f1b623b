package services

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"barterhub/internal/apperrors"
	"barterhub/internal/models"
)

type barterAction string

const (
	actionAccept   barterAction = "accept"
	actionReject   barterAction = "reject"
	actionCounter  barterAction = "counter"
	actionCancel   barterAction = "cancel"
	actionComplete barterAction = "complete"
)

// actionRule says who may run an action, from which statuses, and where it
// leaves the request. A counter offer keeps the request pending.
type actionRule struct {
	roles     []models.BarterRole
	from      []models.BarterStatus
	to        models.BarterStatus
	event     models.EventType
	forbidden string
}

var actionRules = map[barterAction]actionRule{
	actionAccept: {
		roles:     []models.BarterRole{models.BarterRoleReceiver},
		from:      []models.BarterStatus{models.BarterStatusPending},
		to:        models.BarterStatusAccepted,
		event:     models.EventBarterAccepted,
		forbidden: "Only the receiver can accept this request",
	},
	actionReject: {
		roles:     []models.BarterRole{models.BarterRoleReceiver},
		from:      []models.BarterStatus{models.BarterStatusPending},
		to:        models.BarterStatusRejected,
		event:     models.EventBarterRejected,
		forbidden: "Only the receiver can reject this request",
	},
	actionCounter: {
		roles:     []models.BarterRole{models.BarterRoleReceiver},
		from:      []models.BarterStatus{models.BarterStatusPending},
		to:        models.BarterStatusPending,
		event:     models.EventBarterCountered,
		forbidden: "Only the receiver can counter this request",
	},
	actionCancel: {
		roles:     []models.BarterRole{models.BarterRoleSender},
		from:      []models.BarterStatus{models.BarterStatusPending, models.BarterStatusAccepted},
		to:        models.BarterStatusCancelled,
		event:     models.EventBarterCancelled,
		forbidden: "Only the sender can cancel this request",
	},
	actionComplete: {
		roles:     []models.BarterRole{models.BarterRoleSender, models.BarterRoleReceiver},
		from:      []models.BarterStatus{models.BarterStatusAccepted},
		to:        models.BarterStatusCompleted,
		event:     models.EventBarterCompleted,
		forbidden: "Only participants can complete this barter",
	},
}

// authorize checks the actor's role first and the current status second.
func (r actionRule) authorize(action barterAction, barter *models.BarterRequest, actorID primitive.ObjectID) error {
	role := barter.RoleOf(actorID)
	if !containsRole(r.roles, role) {
		return apperrors.Forbidden(r.forbidden)
	}

	if !containsStatus(r.from, barter.Status) {
		return apperrors.InvalidTransition(string(action), barter.Status)
	}

	return nil
}

// changesStatus is false for actions that only annotate a request.
func (r actionRule) changesStatus() bool {
	return len(r.from) != 1 || r.from[0] != r.to
}

func containsRole(roles []models.BarterRole, role models.BarterRole) bool {
	if role == models.BarterRoleNone {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func containsStatus(statuses []models.BarterStatus, status models.BarterStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
