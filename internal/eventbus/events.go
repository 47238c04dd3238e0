package eventbus

// 事件类型
const (
	ActionStarted   = "action:started"
	ActionStopped   = "action:stopped"
	ActionProgress  = "action:progress"
	ActionCompleted = "action:completed"
	ActionFailed    = "action:failed"
	ActionUnlocked  = "action:unlocked"

	ResourceCost    = "resource:cost"
	ResourceReward  = "resource:reward"
	ResourceUpgrade = "resource:upgrade"

	SkillExpGained = "skill:exp-gained"
	SkillLeveledUp = "skill:leveled-up"

	GameSaved         = "game:saved"
	GameLoaded        = "game:loaded"
	ContentReloaded   = "content:reloaded"
	GameOfflineReplay = "game:offline-replay"
)
