package admin

import (
	"m3allem/models"
)

const legalUpdated = "2026-03-01"

// LegalSections returns all legal documents.
func (a *DefaultAdminService) LegalSections() []models.LegalSection {
	return []models.LegalSection{
		{
			ID:       "cgu",
			Title:    "Conditions générales d'utilisation",
			Summary:  "Les règles d'utilisation de la plateforme m3allem.",
			Content:  termsOfService,
			Audience: models.AudienceAll,
			Version:  "v1.0",
			Updated:  legalUpdated,
		},
		{
			ID:       "privacy",
			Title:    "Politique de confidentialité",
			Summary:  "Les données collectées et leur usage, conformément à la loi 09-08.",
			Content:  privacyPolicy,
			Audience: models.AudienceAll,
			Version:  "v1.0",
			Updated:  legalUpdated,
		},
		{
			ID:       "charter",
			Title:    "Charte du technicien",
			Summary:  "Les engagements de qualité, de ponctualité et de prix des techniciens.",
			Content:  technicianCharter,
			Audience: string(models.RoleTechnician),
			Version:  "v1.0",
			Updated:  legalUpdated,
		},
		{
			ID:       "payments",
			Title:    "Paiement et annulation",
			Summary:  "Moyens de paiement acceptés, annulations et remboursements.",
			Content:  paymentPolicy,
			Audience: string(models.RoleClient),
			Version:  "v1.0",
			Updated:  legalUpdated,
		},
	}
}

func (a *DefaultAdminService) LegalSectionsFor(role models.Role) []models.LegalSection {
	var filtered []models.LegalSection
	for _, section := range a.LegalSections() {
		if section.Audience == models.AudienceAll || section.Audience == string(role) || role == models.RoleAdmin {
			filtered = append(filtered, section)
		}
	}
	return filtered
}

const termsOfService = `En utilisant m3allem, vous acceptez les présentes conditions.

1. m3allem met en relation des clients avec des techniciens indépendants.
2. Les estimations de prix sont indicatives; le prix final est fixé à la fin de l'intervention.
3. Les techniciens sont responsables de la qualité de leurs travaux.
4. Tout litige doit être signalé dans les 48 heures suivant l'intervention.`

const privacyPolicy = `Nous collectons le nom, le téléphone, la ville et la position de l'intervention.

1. Ces données servent à trouver un technicien, facturer et vous notifier.
2. Les photos et messages vocaux servent uniquement à qualifier la demande.
3. Vous pouvez supprimer votre compte à tout moment depuis l'application.`

const technicianCharter = `Chaque technicien s'engage à :

- confirmer ou refuser une demande rapidement;
- respecter l'heure du rendez-vous ou prévenir le client;
- annoncer le prix avant de commencer les travaux;
- laisser le chantier propre.

Les absences répétées entraînent la suspension du profil.`

const paymentPolicy = `1. Paiement par carte, CMI, CashPlus, virement ou en espèces au technicien.
2. Une annulation avant le début de l'intervention est gratuite.
3. Un paiement confirmé par erreur est remboursé après vérification.`
