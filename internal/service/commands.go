package service

import (
	"log/slog"

	"github.com/yuqie6/IdleForge/internal/eventbus"
)

type commandKind int

const (
	cmdStartRest commandKind = iota
	cmdResume
	cmdApplySkillBonuses
	cmdApplyUpgrade
	cmdCheckUnlocks
)

func (k commandKind) String() string {
	switch k {
	case cmdStartRest:
		return "start_rest"
	case cmdResume:
		return "resume"
	case cmdApplySkillBonuses:
		return "apply_skill_bonuses"
	case cmdApplyUpgrade:
		return "apply_upgrade"
	case cmdCheckUnlocks:
		return "check_unlocks"
	default:
		return "unknown"
	}
}

// command tick 结束时同步执行的副作用
type command struct {
	kind     commandKind
	actionID string
	skillID  string
	from, to int
}

func (s *GameService) enqueue(c command) {
	s.queue = append(s.queue, c)
}

// drain 按 FIFO 处理命令，处理过程中追加的命令在同一 tick 内执行
func (s *GameService) drain() {
	processed := 0
	for len(s.queue) > 0 {
		if processed >= maxCommandsPerTick {
			slog.Warn("命令队列超出上限，剩余命令丢弃", "dropped", len(s.queue))
			break
		}
		c := s.queue[0]
		s.queue = s.queue[1:]
		s.execute(c)
		processed++
	}
	s.queue = s.queue[:0]
}

func (s *GameService) execute(c command) {
	switch c.kind {
	case cmdStartRest:
		s.startRest(c.actionID)
	case cmdResume:
		s.resume(c.actionID)
	case cmdApplySkillBonuses:
		if sk := s.ch.Skills[c.skillID]; sk != nil {
			s.applySkillBonuses(sk, c.from, c.to)
		}
	case cmdApplyUpgrade:
		s.ApplyUpgrade(c.actionID)
	case cmdCheckUnlocks:
		s.CheckUnlocks()
	default:
		slog.Warn("未知命令", "kind", c.kind.String())
	}
}

// startRest 资源不足时切换到休息行动并记住原行动
func (s *GameService) startRest(resumeID string) {
	rest := s.ch.RestAction()
	if rest == nil {
		return
	}
	if !s.startAction(rest.ID, true) {
		slog.Warn("无法开始休息", "rest", rest.ID, "resume", resumeID)
		return
	}
	s.ch.PendingResumeID = resumeID
	if s.report != nil {
		s.report.RestStarted = true
	}
}

// resume 休息结束后恢复原行动
func (s *GameService) resume(actionID string) {
	if s.ch.PendingResumeID != actionID {
		return
	}
	s.ch.PendingResumeID = ""
	if rest := s.ch.RestAction(); rest != nil && rest.IsActive {
		rest.Stop(false)
		if s.ch.ActiveActionID == rest.ID {
			s.ch.ActiveActionID = ""
			s.publish(eventbus.ActionStopped, map[string]any{"actionId": rest.ID, "completed": true})
		}
	}
	if !s.startAction(actionID, false) {
		slog.Warn("恢复行动失败", "action", actionID)
		return
	}
	if s.report != nil {
		s.report.Resumed = actionID
	}
}
