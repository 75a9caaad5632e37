package process_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Guilherme-Argilar/minha-panela/internal/kettle"
	"github.com/Guilherme-Argilar/minha-panela/internal/process"
)

var _ = Describe("automatic cook", func() {
	var c *process.Controller

	BeforeEach(func() {
		c = process.New(process.DefaultConfig())
		Expect(c.Start()).To(Succeed())
	})

	It("reaches the finished phase within 200 ticks", func() {
		phases := []kettle.Phase{c.State().Phase}
		for i := 0; i < 200; i++ {
			c.Tick(process.NominalTick)
			if p := c.State().Phase; p != phases[len(phases)-1] {
				phases = append(phases, p)
			}
			if c.State().Phase == kettle.Finished {
				break
			}
		}

		st := c.State()
		Expect(st.Phase).To(Equal(kettle.Finished))
		Expect(st.Brix).To(BeNumerically(">=", 75))

		// Strictly forward, one at a time, no skipping.
		Expect(phases).To(Equal([]kettle.Phase{
			kettle.Clarification,
			kettle.Concentration,
			kettle.Point,
			kettle.Finished,
		}))
	})

	It("holds the physical invariants on every tick", func() {
		cfg := c.Config()
		for i := 0; i < 300; i++ {
			c.Tick(process.NominalTick)
			st := c.State()

			Expect(st.Temperature).To(BeNumerically(">=", cfg.Physics.Ambient))
			Expect(st.Temperature).To(BeNumerically("<=", st.Setpoint+cfg.Physics.OverTemp))
			Expect(st.Brix).To(BeNumerically(">=", 0))
			Expect(st.Brix).To(BeNumerically("<=", cfg.Physics.MaxBrix))
			Expect(st.Torque).To(BeNumerically(">=", 0))
			Expect(st.Torque).To(BeNumerically("<=", 100))
			Expect(st.EffectiveRPM).To(BeNumerically("<=", st.CommandedRPM))
			if !st.ProtectionOn {
				Expect(st.EffectiveRPM).To(Equal(st.CommandedRPM))
			}
		}

		snap := c.Snapshot()
		Expect(len(snap.Alarms)).To(BeNumerically("<=", cfg.AlarmCapacity))
		Expect(len(snap.History)).To(BeNumerically("<=", cfg.HistoryCapacity))
	})
})

var _ = Describe("motor protection", func() {
	It("cuts stirrer speed when torque crosses overload", func() {
		c := process.New(process.DefaultConfig())
		Expect(c.SetCommandedRPM(100)).To(Succeed())
		Expect(c.Start()).To(Succeed())

		tripped := false
		for i := 0; i < 400; i++ {
			c.Tick(process.NominalTick)
			if c.State().ProtectionOn {
				tripped = true
				break
			}
		}
		Expect(tripped).To(BeTrue(), "full-speed stirring in thick syrup must trip the guard")

		st := c.State()
		Expect(st.EffectiveRPM).To(BeNumerically("~", 70, 1e-9))
		Expect(st.SavedRPM).To(BeNumerically("~", 100, 1e-9))
		Expect(st.EffectiveRPM).To(BeNumerically("<", st.SavedRPM))

		var warned bool
		for _, a := range c.Snapshot().Alarms {
			if a.Severity == kettle.SeverityWarning && strings.Contains(a.Message, "protection") {
				warned = true
			}
		}
		Expect(warned).To(BeTrue(), "activation must append a warning alarm")
	})
})

var _ = Describe("reset", func() {
	It("restores the exact default state after arbitrary operations", func() {
		c := process.New(process.DefaultConfig())
		Expect(c.Start()).To(Succeed())
		for i := 0; i < 80; i++ {
			c.Tick(process.NominalTick)
			c.TickClock(process.NominalTick)
		}
		c.SetAutoMode(false)
		Expect(c.SetManualSetpoint(70)).To(Succeed())
		Expect(c.SetCommandedRPM(85)).To(Succeed())

		c.Reset()

		snap := c.Snapshot()
		Expect(snap.Temperature).To(Equal(25.0))
		Expect(snap.Brix).To(Equal(20.0))
		Expect(snap.Torque).To(Equal(10.0))
		Expect(snap.CommandedRPM).To(Equal(40.0))
		Expect(snap.EffectiveRPM).To(Equal(40.0))
		Expect(snap.Phase).To(Equal(kettle.Clarification))
		Expect(snap.Setpoint).To(Equal(c.Config().Recipe.Setpoint(kettle.Clarification)))
		Expect(snap.ElapsedSeconds).To(Equal(0))
		Expect(snap.Running).To(BeFalse())
		Expect(snap.AutoMode).To(BeTrue())
		Expect(snap.ProtectionOn).To(BeFalse())
		Expect(snap.Alarms).To(BeEmpty())
		Expect(snap.History).To(BeEmpty())
	})
})
