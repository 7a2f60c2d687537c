package main

import (
	"math/rand"
	"time"
)

var pairingRand = rand.New(rand.NewSource(time.Now().UnixNano()))

// circularPairing maps each participant to the one they create tasks for.
// Shuffling first and then closing the ring gives a uniform random cyclic
// derangement: nobody is ever paired with themselves (the set has >= 2
// members) and every participant both gives and receives exactly once.
func circularPairing(userIDs []uint, rng *rand.Rand) map[uint]uint {
	shuffled := make([]uint, len(userIDs))
	copy(shuffled, userIDs)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	pairs := make(map[uint]uint, len(shuffled))
	for i, id := range shuffled {
		pairs[id] = shuffled[(i+1)%len(shuffled)]
	}
	return pairs
}

// buildInvitations runs the secret pairing over the participant set and
// produces one Pending invitation per participant. ChrisMa is who the
// invitee creates tasks for; ChrisChild is who creates tasks for them.
func buildInvitations(ev *Event, participants []User) []Invitation {
	ids := make([]uint, 0, len(participants))
	byID := make(map[uint]User, len(participants))
	for _, u := range participants {
		ids = append(ids, u.ID)
		byID[u.ID] = u
	}

	createsFor := circularPairing(ids, pairingRand)

	receivesFrom := make(map[uint]uint, len(createsFor))
	for creator, recipient := range createsFor {
		receivesFrom[recipient] = creator
	}

	now := time.Now()
	invitations := make([]Invitation, 0, len(participants))
	for _, u := range participants {
		ma := byID[createsFor[u.ID]]
		child := byID[receivesFrom[u.ID]]
		invitations = append(invitations, Invitation{
			EventID:            ev.ID,
			UserID:             u.ID,
			ChrisMaUserID:      ma.ID,
			ChrisMaUsername:    ma.Username,
			ChrisChildUserID:   child.ID,
			ChrisChildUsername: child.Username,
			Status:             InvitationPending,
			InvitedAt:          now,
		})
	}
	return invitations
}
