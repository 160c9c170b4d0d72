package features

// Feature names in the column order the model was trained with.
const (
	HomeXGAtt     = "home_xG_att_90"
	HomeSoTAtt    = "home_SoT_att_90"
	HomeBigChAtt  = "home_BigCh_att_90"
	HomeCornAtt   = "home_Corn_att_90"
	HomeToBAtt    = "home_ToB_att_90"
	HomeXGADef    = "home_xGA_def_90"
	HomeSoTAgst   = "home_SoT_agst_90"
	HomeBigChAgst = "home_BigCh_agst_90"

	AwayXGAtt     = "away_xG_att_90"
	AwaySoTAtt    = "away_SoT_att_90"
	AwayBigChAtt  = "away_BigCh_att_90"
	AwayCornAtt   = "away_Corn_att_90"
	AwayToBAtt    = "away_ToB_att_90"
	AwayXGADef    = "away_xGA_def_90"
	AwaySoTAgst   = "away_SoT_agst_90"
	AwayBigChAgst = "away_BigCh_agst_90"

	TempoSum        = "TempoSum"
	SoTSum          = "SoTSum"
	AttackVsDefense = "AttackVsDefense"
	XGAttSum        = "xG_att_sum"
	XGAttMin        = "xG_att_min"
	BigChSum        = "BigCh_sum"

	HomePosition = "home_position"
	AwayPosition = "away_position"
	PositionDiff = "position_diff"
	PointsDiff   = "points_diff"
	GDDiff       = "gd_diff"

	HomeLast3Points = "home_last3_points"
	HomeLast3Goals  = "home_last3_goals"
	HomeFormTrend   = "home_form_trend"
	AwayLast3Points = "away_last3_points"
	AwayLast3Goals  = "away_last3_goals"
	AwayFormTrend   = "away_form_trend"

	HomeStrengthRatio = "home_strength_ratio"
	AwayStrengthRatio = "away_strength_ratio"

	BothTop6       = "both_top6"
	BothBottom6    = "both_bottom6"
	ClosePositions = "close_positions"
)

// Names is the canonical 38-column feature order
var Names = []string{
	HomeXGAtt, HomeSoTAtt, HomeBigChAtt, HomeCornAtt, HomeToBAtt, HomeXGADef, HomeSoTAgst, HomeBigChAgst,
	AwayXGAtt, AwaySoTAtt, AwayBigChAtt, AwayCornAtt, AwayToBAtt, AwayXGADef, AwaySoTAgst, AwayBigChAgst,
	TempoSum, SoTSum, AttackVsDefense, XGAttSum, XGAttMin, BigChSum,
	HomePosition, AwayPosition, PositionDiff, PointsDiff, GDDiff,
	HomeLast3Points, HomeLast3Goals, HomeFormTrend,
	AwayLast3Points, AwayLast3Goals, AwayFormTrend,
	HomeStrengthRatio, AwayStrengthRatio,
	BothTop6, BothBottom6, ClosePositions,
}

// composite names are always recomputed from the base values
var compositeNames = map[string]bool{
	TempoSum: true, SoTSum: true, AttackVsDefense: true, XGAttSum: true, XGAttMin: true, BigChSum: true,
	PositionDiff: true, BothTop6: true, BothBottom6: true, ClosePositions: true,
}

// IsComposite reports whether name is derived from other features
func IsComposite(name string) bool {
	return compositeNames[name]
}
