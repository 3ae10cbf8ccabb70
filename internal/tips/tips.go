// Package tips holds the safety-tip content tables and composes the
// three independent tip lists served for a ward at an hour.
package tips

import "wardwatch/internal/models"

var generalTips = []string{
	"Stay aware of your surroundings at all times",
	"Keep emergency contacts readily available",
	"Share your location with trusted contacts when traveling",
	"Stay in well-lit and populated areas when possible",
}

var levelTips = map[models.SafetyLevel][]string{
	models.LevelGreen: {
		"This area is generally safe, but basic precautions are still recommended",
		"Normal vigilance is sufficient in this area",
		"Enjoy your activities while maintaining standard awareness",
	},
	models.LevelYellow: {
		"Moderate caution is advised in this area",
		"Avoid walking alone at night if possible",
		"Keep valuables concealed and secure",
		"Stay in well-lit and populated areas",
	},
	models.LevelRed: {
		"Extra vigilance is strongly recommended",
		"Avoid traveling alone, especially after dark",
		"Consider alternative routes or transportation",
		"Keep in constant contact with someone who knows your whereabouts",
		"Avoid displaying valuable items in public",
	},
}

var factorTips = map[string][]string{
	"Poorly lit areas": {
		"Use a flashlight or phone light in dark areas",
		"Stick to main roads with proper lighting",
		"Travel in groups when possible",
	},
	"High pedestrian traffic": {
		"Keep your wallet/purse secure and close to your body",
		"Be aware of pickpockets in crowded areas",
		"Avoid distractions like using phone in very crowded places",
	},
	"Proximity to transit hubs": {
		"Be extra vigilant around bus and train stations",
		"Secure your luggage and personal belongings",
		"Pre-plan your route to minimize waiting time",
	},
	"Entertainment venues": {
		"Consume alcohol responsibly if visiting bars/clubs",
		"Never leave drinks unattended",
		"Plan your return transportation in advance",
	},
	"Commercial activity": {
		"Keep shopping bags close and monitored",
		"Avoid displaying large amounts of cash",
		"Be cautious in market areas with dense crowds",
	},
	"Residential density": {
		"Check if your building has functioning security measures",
		"Lock doors and windows properly",
		"Be aware of your neighbors and report suspicious activity",
	},
	"Previous incidents": {
		"Check local news for recent crime patterns in this area",
		"Avoid areas with repeated criminal activity",
		"Follow police advisories for this location",
	},
	"School/college proximity": {
		"Be alert during opening and closing hours when crowds gather",
		"Watch for traffic congestion during school rush hours",
		"Report suspicious individuals loitering near educational institutions",
	},
}

func timeTips(hour int) []string {
	switch {
	case hour < 6:
		return []string{
			"Consider using private transportation rather than walking",
			"Inform someone of your expected arrival time",
			"Avoid poorly lit shortcuts",
		}
	case hour < 12:
		return []string{
			"Morning rush hour may create opportunities for pickpockets",
			"Be cautious at ATMs during early banking hours",
			"Watch for traffic congestion around schools and offices",
		}
	case hour < 18:
		return []string{
			"Be cautious in crowded shopping areas during peak hours",
			"Stay hydrated and watch for heat-related health issues",
			"Be alert for potential scams in tourist areas",
		}
	default:
		return []string{
			"Prefer well-traveled routes after sunset",
			"Keep your phone charged for emergencies",
			"Avoid displaying valuable electronics in public",
		}
	}
}

// For composes the tip lists for a ward given its predicted level and
// risk factors at the hour. Each list may be empty independently.
func For(wardID, wardName string, level models.SafetyLevel, riskFactors []string, hour int) models.SafetyTips {
	specific := append([]string(nil), levelTips[level]...)
	for _, factor := range riskFactors {
		specific = append(specific, factorTips[factor]...)
	}

	return models.SafetyTips{
		WardID:       wardID,
		WardName:     wardName,
		SafetyLevel:  level,
		GeneralTips:  append([]string(nil), generalTips...),
		SpecificTips: specific,
		TimeTips:     timeTips(hour),
	}
}
