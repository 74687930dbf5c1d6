package membership

import (
	"context"
	"database/sql"
	"errors"
	"time"

	appdb "github.com/codr1/EscalationLeague/internal/db"
	dbgen "github.com/codr1/EscalationLeague/internal/db/generated"
)

type Membership struct {
	ID        int64     `json:"id"`
	LeagueID  int64     `json:"leagueId"`
	UserID    int64     `json:"userId"`
	PlayerID  *int64    `json:"playerId"`
	Role      Role      `json:"role"`
	Status    Status    `json:"status"`
	JoinedAt  time.Time `json:"joinedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Member is a membership with the user's display name.
type Member struct {
	Membership
	DisplayName string `json:"displayName"`
}

type JoinParams struct {
	LeagueID int64
	UserID   int64
	Password *string
}

type JoinResult struct {
	Membership  Membership
	Reactivated bool
}

type LeaveParams struct {
	LeagueID int64
	UserID   int64
}

type LeaveResult struct {
	Membership     Membership
	LeagueArchived bool
}

type Service struct {
	db *appdb.DB
}

func NewService(database *appdb.DB) *Service {
	return &Service{db: database}
}

// Join adds the user to the league, or reactivates a previous membership.
// Re-joining skips the password and capacity checks.
func (s *Service) Join(ctx context.Context, params JoinParams) (JoinResult, error) {
	if params.LeagueID <= 0 || params.UserID <= 0 {
		return JoinResult{}, newError(KindBadRequest, "leagueId and userId are required")
	}

	var result JoinResult
	err := s.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries

		league, err := loadLeague(ctx, qtx, params.LeagueID)
		if err != nil {
			return err
		}
		leagueStatus, err := ParseLeagueStatus(league.Status)
		if err != nil {
			return internalError("Failed to read league", err)
		}
		switch leagueStatus {
		case LeagueActive:
		case LeagueArchived:
			return newError(KindInvalidState, "League is not accepting new members")
		}

		existing, err := qtx.GetMembership(ctx, dbgen.GetMembershipParams{
			LeagueID: params.LeagueID,
			UserID:   params.UserID,
		})
		switch {
		case err == nil:
			status, err := ParseStatus(existing.Status)
			if err != nil {
				return internalError("Failed to read membership", err)
			}
			switch status {
			case StatusActive:
				return newError(KindConflict, "Already a member of this league")
			case StatusInactive:
				row, err := qtx.SetMembershipStatus(ctx, dbgen.SetMembershipStatusParams{
					Status: string(StatusActive),
					ID:     existing.ID,
				})
				if err != nil {
					return internalError("Failed to reactivate membership", err)
				}
				result.Membership, err = FromRow(row)
				if err != nil {
					return internalError("Failed to read membership", err)
				}
				result.Reactivated = true
				return nil
			}
		case errors.Is(err, sql.ErrNoRows):
		default:
			return internalError("Failed to load membership", err)
		}

		if err := checkJoinPassword(league.JoinPasswordHash.String, params.Password); err != nil {
			return err
		}

		row, err := qtx.CreatePlayerMembershipWithinCapacity(ctx, dbgen.CreatePlayerMembershipWithinCapacityParams{
			LeagueID: params.LeagueID,
			UserID:   params.UserID,
		})
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return newError(KindInvalidState, "League is full")
			}
			return internalError("Failed to create membership", err)
		}
		result.Membership, err = FromRow(row)
		if err != nil {
			return internalError("Failed to read membership", err)
		}
		return nil
	})
	if err != nil {
		return JoinResult{}, classify(err, "Failed to join league")
	}
	return result, nil
}

// Leave deactivates the user's membership. An owner may only leave as the
// last active member, which archives the league in the same transaction.
func (s *Service) Leave(ctx context.Context, params LeaveParams) (LeaveResult, error) {
	if params.LeagueID <= 0 || params.UserID <= 0 {
		return LeaveResult{}, newError(KindBadRequest, "leagueId and userId are required")
	}

	var result LeaveResult
	err := s.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries

		existing, err := qtx.GetMembership(ctx, dbgen.GetMembershipParams{
			LeagueID: params.LeagueID,
			UserID:   params.UserID,
		})
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return newError(KindNotFound, "Membership not found")
			}
			return internalError("Failed to load membership", err)
		}

		role, err := ParseRole(existing.Role)
		if err != nil {
			return internalError("Failed to read membership", err)
		}
		switch role {
		case RoleOwner:
			others, err := qtx.CountOtherActiveMemberships(ctx, dbgen.CountOtherActiveMembershipsParams{
				LeagueID: params.LeagueID,
				UserID:   params.UserID,
			})
			if err != nil {
				return internalError("Failed to count members", err)
			}
			if others > 0 {
				return newError(KindInvalidState, "Must transfer ownership or delete league first")
			}
			archived, err := qtx.ArchiveLeague(ctx, params.LeagueID)
			if err != nil {
				return internalError("Failed to archive league", err)
			}
			result.LeagueArchived = archived > 0
		case RoleOrganizer, RolePlayer:
		}

		row, err := qtx.SetMembershipStatus(ctx, dbgen.SetMembershipStatusParams{
			Status: string(StatusInactive),
			ID:     existing.ID,
		})
		if err != nil {
			return internalError("Failed to leave league", err)
		}
		result.Membership, err = FromRow(row)
		if err != nil {
			return internalError("Failed to read membership", err)
		}
		return nil
	})
	if err != nil {
		return LeaveResult{}, classify(err, "Failed to leave league")
	}
	return result, nil
}

// TransferOwnership hands the owner role to another active member. The
// previous owner stays in the league as an organizer.
func (s *Service) TransferOwnership(ctx context.Context, leagueID, ownerUserID, newOwnerUserID int64) (Membership, error) {
	if leagueID <= 0 || ownerUserID <= 0 || newOwnerUserID <= 0 {
		return Membership{}, newError(KindBadRequest, "leagueId, userId and newOwnerUserId are required")
	}
	if ownerUserID == newOwnerUserID {
		return Membership{}, newError(KindBadRequest, "New owner must be a different member")
	}

	var transferred Membership
	err := s.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries

		if _, err := loadLeague(ctx, qtx, leagueID); err != nil {
			return err
		}
		owner, err := Authorize(ctx, qtx, leagueID, ownerUserID, RoleOwner)
		if err != nil {
			return err
		}

		target, err := loadTarget(ctx, qtx, leagueID, newOwnerUserID)
		if err != nil {
			return err
		}
		if target.Status != StatusActive {
			return newError(KindInvalidState, "New owner must be an active member")
		}

		row, err := qtx.SetMembershipRole(ctx, dbgen.SetMembershipRoleParams{
			Role: string(RoleOwner),
			ID:   target.ID,
		})
		if err != nil {
			return internalError("Failed to transfer ownership", err)
		}
		if _, err := qtx.SetMembershipRole(ctx, dbgen.SetMembershipRoleParams{
			Role: string(RoleOrganizer),
			ID:   owner.ID,
		}); err != nil {
			return internalError("Failed to transfer ownership", err)
		}

		transferred, err = FromRow(row)
		if err != nil {
			return internalError("Failed to read membership", err)
		}
		return nil
	})
	if err != nil {
		return Membership{}, classify(err, "Failed to transfer ownership")
	}
	return transferred, nil
}

// UpdateRole moves a member between organizer and player. Only the owner may
// do this, and the owner role itself only changes through TransferOwnership.
func (s *Service) UpdateRole(ctx context.Context, leagueID, actorUserID, targetUserID int64, role Role) (Membership, error) {
	if leagueID <= 0 || actorUserID <= 0 || targetUserID <= 0 {
		return Membership{}, newError(KindBadRequest, "leagueId, userId and target user are required")
	}
	switch role {
	case RoleOwner:
		return Membership{}, newError(KindBadRequest, "Use ownership transfer to assign the owner role")
	case RoleOrganizer, RolePlayer:
	default:
		return Membership{}, newError(KindBadRequest, "Invalid role")
	}

	var updated Membership
	err := s.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries

		if _, err := Authorize(ctx, qtx, leagueID, actorUserID, RoleOwner); err != nil {
			return err
		}

		target, err := loadTarget(ctx, qtx, leagueID, targetUserID)
		if err != nil {
			return err
		}
		switch target.Role {
		case RoleOwner:
			return newError(KindInvalidState, "The owner role can only change through ownership transfer")
		case RoleOrganizer, RolePlayer:
		}
		if target.Status != StatusActive {
			return newError(KindInvalidState, "Member is not active")
		}

		row, err := qtx.SetMembershipRole(ctx, dbgen.SetMembershipRoleParams{
			Role: string(role),
			ID:   target.ID,
		})
		if err != nil {
			return internalError("Failed to update role", err)
		}
		updated, err = FromRow(row)
		if err != nil {
			return internalError("Failed to read membership", err)
		}
		return nil
	})
	if err != nil {
		return Membership{}, classify(err, "Failed to update role")
	}
	return updated, nil
}

func (s *Service) ListMembers(ctx context.Context, leagueID int64, includeInactive bool) ([]Member, error) {
	if leagueID <= 0 {
		return nil, newError(KindBadRequest, "leagueId is required")
	}

	q := s.db.Queries
	if _, err := loadLeague(ctx, q, leagueID); err != nil {
		return nil, err
	}

	rows, err := q.ListLeagueMembers(ctx, dbgen.ListLeagueMembersParams{
		LeagueID:        leagueID,
		IncludeInactive: includeInactive,
	})
	if err != nil {
		return nil, internalError("Failed to list members", err)
	}

	members := make([]Member, 0, len(rows))
	for _, row := range rows {
		m, err := FromRow(dbgen.LeagueMembership{
			ID:        row.ID,
			LeagueID:  row.LeagueID,
			UserID:    row.UserID,
			PlayerID:  row.PlayerID,
			Role:      row.Role,
			Status:    row.Status,
			JoinedAt:  row.JoinedAt,
			UpdatedAt: row.UpdatedAt,
		})
		if err != nil {
			return nil, internalError("Failed to read membership", err)
		}
		members = append(members, Member{Membership: m, DisplayName: row.DisplayName})
	}
	return members, nil
}

// RequireRole returns the caller's active membership when its role is one of
// allowed. An empty allowed list accepts any active member.
func (s *Service) RequireRole(ctx context.Context, leagueID, userID int64, allowed ...Role) (Membership, error) {
	return Authorize(ctx, s.db.Queries, leagueID, userID, allowed...)
}

// Authorize is RequireRole against an explicit query handle so callers can
// check membership inside their own transaction.
func Authorize(ctx context.Context, q dbgen.Querier, leagueID, userID int64, allowed ...Role) (Membership, error) {
	row, err := q.GetMembership(ctx, dbgen.GetMembershipParams{
		LeagueID: leagueID,
		UserID:   userID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Membership{}, newError(KindNotFound, "Membership not found")
		}
		return Membership{}, internalError("Failed to load membership", err)
	}

	m, err := FromRow(row)
	if err != nil {
		return Membership{}, internalError("Failed to read membership", err)
	}
	switch m.Status {
	case StatusActive:
	case StatusInactive:
		return Membership{}, newError(KindForbidden, "Membership is not active")
	}

	if len(allowed) == 0 {
		return m, nil
	}
	for _, role := range allowed {
		if m.Role == role {
			return m, nil
		}
	}
	return Membership{}, newError(KindForbidden, "Insufficient league role")
}

// FromRow converts a stored membership, rejecting unknown role or status
// values.
func FromRow(row dbgen.LeagueMembership) (Membership, error) {
	role, err := ParseRole(row.Role)
	if err != nil {
		return Membership{}, err
	}
	status, err := ParseStatus(row.Status)
	if err != nil {
		return Membership{}, err
	}

	m := Membership{
		ID:        row.ID,
		LeagueID:  row.LeagueID,
		UserID:    row.UserID,
		Role:      role,
		Status:    status,
		JoinedAt:  row.JoinedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.PlayerID.Valid {
		playerID := row.PlayerID.Int64
		m.PlayerID = &playerID
	}
	return m, nil
}

func loadLeague(ctx context.Context, q dbgen.Querier, leagueID int64) (dbgen.League, error) {
	league, err := q.GetLeague(ctx, leagueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.League{}, newError(KindNotFound, "League not found")
		}
		return dbgen.League{}, internalError("Failed to load league", err)
	}
	return league, nil
}

func loadTarget(ctx context.Context, q dbgen.Querier, leagueID, userID int64) (Membership, error) {
	row, err := q.GetMembership(ctx, dbgen.GetMembershipParams{
		LeagueID: leagueID,
		UserID:   userID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Membership{}, newError(KindNotFound, "Member not found")
		}
		return Membership{}, internalError("Failed to load member", err)
	}
	m, err := FromRow(row)
	if err != nil {
		return Membership{}, internalError("Failed to read membership", err)
	}
	return m, nil
}
