// Package schedule turns stages and controllers ordered through shared labels
// into a single linear list of actions.
//
// Stages are ordered against each other by label; controllers are ordered
// inside their stage, where "after L" waits for every controller carrying L.
// Both passes are deterministic: ties keep registration order.
//
//	b := schedule.New[*World]()
//	_ = b.AddStage("Input")
//	_ = b.AddStageAfter("Physics", "Input")
//	_ = b.AddControllerToStage("Input", schedule.NewController("keys", readKeys))
//	_ = b.AddControllerSeq(schedule.NewController("mouse", readMouse))
//	s, err := b.Build()
//	if err != nil {
//		return err
//	}
//	s.Execute(world)
//
// Builders and schedules are not safe for concurrent use.
package schedule
