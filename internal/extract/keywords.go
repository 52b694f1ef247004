package extract

import "regexp"

// RoleKeyword matches business-owner style titles in English, Italian,
// French, German, Spanish and Portuguese. Exported so the scorer can apply
// its role bonus with the same pattern the extractors use.
var RoleKeyword = regexp.MustCompile(`(?i)\b(` +
	// English
	`founder|co-?founder|owner|co-?owner|ceo|chief executive|president|` +
	`managing director|managing partner|director|principal|partner|proprietor|` +
	// Italian
	`titolare|fondatore|fondatrice|amministratore(?: delegato)?|direttore|direttrice|presidente|socio fondatore|` +
	// French
	`fondateur|fondatrice|g[eé]rant|g[eé]rante|directeur|directrice|pdg|pr[eé]sident|` +
	// German
	`gesch[aä]ftsf[uü]hrer(?:in)?|inhaber(?:in)?|gr[uü]nder(?:in)?|leiter(?:in)?|vorstand|` +
	// Spanish / Portuguese
	`fundador|fundadora|due[nñ]o|due[nñ]a|propietario|propietaria|gerente|diretor|diretora|s[oó]cio|s[oó]cia` +
	`)\b`)
