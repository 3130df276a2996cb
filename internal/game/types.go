package game

import "time"

// Sentinel ids
const (
	NoTeam  = -1
	NoMatch = -1
	Draw    = -1
)

// Game constants
const (
	MaxTeamMembers = 3
	ShipMaxHP      = 1000
	ArmorSlots     = 2
	MapSize        = 100

	MinUsernameLen = 3
	MaxUsernameLen = 20
	MinPasswordLen = 4
	MaxPasswordLen = 64
	MaxTeamNameLen = 32
)

type TeamStatus string

const (
	TeamActive  TeamStatus = "active"
	TeamDeleted TeamStatus = "deleted"
)

type Role string

const (
	RoleCreator Role = "creator"
	RoleMember  Role = "member"
)

// RequestStatus is shared by join requests and invites
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
	RequestCanceled RequestStatus = "canceled"
)

type ChallengeStatus string

const (
	ChallengePending  ChallengeStatus = "pending"
	ChallengeAccepted ChallengeStatus = "accepted"
	ChallengeDeclined ChallengeStatus = "declined"
	ChallengeCanceled ChallengeStatus = "canceled"
)

type MatchStatus string

const (
	MatchPending  MatchStatus = "pending"
	MatchRunning  MatchStatus = "running"
	MatchFinished MatchStatus = "finished"
	// MatchCanceled is a valid state but no command produces it today
	MatchCanceled MatchStatus = "canceled"
)

// ArmorType identifies an armor plate; the wire uses the numeric value
type ArmorType int

const (
	ArmorNone  ArmorType = 0
	ArmorBasic ArmorType = 1
	ArmorHeavy ArmorType = 2
)

// Weapon is a weapon class; each class has its own ammo counter on a ship
type Weapon string

const (
	Cannon  Weapon = "cannon"
	Laser   Weapon = "laser"
	Missile Weapon = "missile"
)

// Weapons lists weapon classes in display order
var Weapons = []Weapon{Cannon, Laser, Missile}

type ChestTier string

const (
	Bronze ChestTier = "bronze"
	Silver ChestTier = "silver"
	Gold   ChestTier = "gold"
)

type Team struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Creator   string     `json:"creator"`
	Status    TeamStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`

	slug string
}

// IsActive reports whether the team has not been deleted
func (t *Team) IsActive() bool {
	return t.Status == TeamActive
}

type TeamMember struct {
	TeamID   int       `json:"team_id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type JoinRequest struct {
	TeamID    int           `json:"team_id"`
	Username  string        `json:"username"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

type TeamInvite struct {
	TeamID    int           `json:"team_id"`
	Username  string        `json:"username"`
	InvitedBy string        `json:"invited_by"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

type Challenge struct {
	ID           int             `json:"id"`
	SenderTeamID int             `json:"sender_team_id"`
	TargetTeamID int             `json:"target_team_id"`
	Status       ChallengeStatus `json:"status"`
	MatchID      int             `json:"match_id"`
	CreatedAt    time.Time       `json:"created_at"`
	RespondedAt  time.Time       `json:"responded_at,omitempty"`
}

type Match struct {
	ID           int           `json:"id"`
	Team1ID      int           `json:"team1_id"`
	Team2ID      int           `json:"team2_id"`
	Status       MatchStatus   `json:"status"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time,omitempty"`
	Duration     time.Duration `json:"duration"`
	WinnerTeamID int           `json:"winner_team_id"` // Draw when finished without a winner
}

// HasTeam reports whether teamID is one of the two sides
func (m *Match) HasTeam(teamID int) bool {
	return m.Team1ID == teamID || m.Team2ID == teamID
}

type ArmorSlot struct {
	Type  ArmorType `json:"type"`
	Value int       `json:"value"`
}

// Ship is a player's combat state inside one running match
type Ship struct {
	MatchID  int                  `json:"match_id"`
	Username string               `json:"username"`
	TeamID   int                  `json:"team_id"`
	HP       int                  `json:"hp"`
	MaxHP    int                  `json:"max_hp"`
	Armor    [ArmorSlots]ArmorSlot `json:"armor"`
	Ammo     map[Weapon]int       `json:"ammo"`
}

// TotalArmor sums the remaining absorption of both slots
func (s *Ship) TotalArmor() int {
	total := 0
	for _, slot := range s.Armor {
		total += slot.Value
	}
	return total
}

// IsSunk reports whether the ship has no hp left
func (s *Ship) IsSunk() bool {
	return s.HP <= 0
}

type Chest struct {
	ID          int       `json:"id"`
	MatchID     int       `json:"match_id"`
	Tier        ChestTier `json:"tier"`
	Reward      int64     `json:"reward"`
	X           int       `json:"x"`
	Y           int       `json:"y"`
	Collected   bool      `json:"collected"`
	CollectedBy string    `json:"collected_by,omitempty"`
	SpawnedAt   time.Time `json:"spawned_at"`

	puzzle int
}

// FireResult is what one successful shot did
type FireResult struct {
	Attacker    string `json:"attacker"`
	Target      string `json:"target"`
	Weapon      Weapon `json:"weapon"`
	Damage      int    `json:"damage"`
	TargetHP    int    `json:"target_hp"`
	TargetArmor int    `json:"target_armor"`
	Sunk        bool   `json:"sunk"`
}

// WeaponSpec defines per-shot damage and the pack sold by BUY_WEAPON
type WeaponSpec struct {
	Damage   int   `json:"damage"`
	PackSize int   `json:"pack_size"`
	Price    int64 `json:"price"`
}

// ArmorSpec defines how much damage a plate absorbs and what it costs
type ArmorSpec struct {
	Absorb int   `json:"absorb"`
	Price  int64 `json:"price"`
}

// TierSpec defines the draw weight and coin reward of a chest tier
type TierSpec struct {
	Weight int   `json:"weight"`
	Reward int64 `json:"reward"`
}

var weaponSpecs = map[Weapon]WeaponSpec{
	Cannon:  {Damage: 10, PackSize: 50, Price: 100},
	Laser:   {Damage: 100, PackSize: 10, Price: 1000},
	Missile: {Damage: 800, PackSize: 1, Price: 2000},
}

var armorSpecs = map[ArmorType]ArmorSpec{
	ArmorBasic: {Absorb: 500, Price: 1000},
	ArmorHeavy: {Absorb: 1500, Price: 2000},
}

// tierOrder fixes the iteration order of the weighted draw
var tierOrder = []ChestTier{Bronze, Silver, Gold}

var tierSpecs = map[ChestTier]TierSpec{
	Bronze: {Weight: 70, Reward: 100},
	Silver: {Weight: 25, Reward: 300},
	Gold:   {Weight: 5, Reward: 1000},
}

// WeaponSpecFor returns the spec of a weapon class
func WeaponSpecFor(w Weapon) (WeaponSpec, bool) {
	spec, ok := weaponSpecs[w]
	return spec, ok
}

// ArmorSpecFor returns the spec of an armor type
func ArmorSpecFor(a ArmorType) (ArmorSpec, bool) {
	spec, ok := armorSpecs[a]
	return spec, ok
}

// TierSpecFor returns the spec of a chest tier
func TierSpecFor(t ChestTier) (TierSpec, bool) {
	spec, ok := tierSpecs[t]
	return spec, ok
}
