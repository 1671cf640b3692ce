package render

// The extraction scripts are fixed, read-only capability calls with a
// documented return shape. They never mutate the page, and they tolerate
// cross-origin stylesheet access being blocked by returning partial
// results.

// styleVariablesScript returns the values of CSS custom properties declared
// in accessible stylesheets, deduplicated, as an array of strings.
const styleVariablesScript = `(() => {
	const out = [];
	const seen = new Set();
	for (const sheet of Array.from(document.styleSheets)) {
		let rules;
		try {
			rules = sheet.cssRules;
		} catch (e) {
			continue; // cross-origin stylesheet, skip
		}
		if (!rules) continue;
		for (const rule of Array.from(rules)) {
			if (!rule.style) continue;
			for (let i = 0; i < rule.style.length; i++) {
				const name = rule.style[i];
				if (!name.startsWith('--')) continue;
				const value = rule.style.getPropertyValue(name).trim();
				if (value && !seen.has(value)) {
					seen.add(value);
					out.push(value);
				}
			}
		}
	}
	return out.slice(0, 64);
})()`

// roleColoursScript returns computed colours for role-tagged elements as
// {logo, callToAction, accent, heading, navigation}, each an array of at
// most five computed colour strings.
const roleColoursScript = `(() => {
	const pick = (selectors, props, limit) => {
		const vals = [];
		const seen = new Set();
		for (const sel of selectors) {
			let els;
			try {
				els = document.querySelectorAll(sel);
			} catch (e) {
				continue;
			}
			for (const el of Array.from(els)) {
				const cs = getComputedStyle(el);
				for (const prop of props) {
					const v = cs.getPropertyValue(prop);
					if (!v || v === 'transparent' || v === 'rgba(0, 0, 0, 0)') continue;
					if (!seen.has(v)) {
						seen.add(v);
						vals.push(v);
					}
					if (vals.length >= limit) return vals;
				}
			}
		}
		return vals;
	};
	return {
		logo: pick(['header img[class*="logo"]', 'img[alt*="logo" i]', '[class*="logo"]'],
			['color', 'background-color'], 5),
		callToAction: pick(['button', '[class*="btn"]', '[class*="cta"]', 'a[class*="button"]'],
			['background-color'], 5),
		accent: pick(['a', '[class*="accent"]'], ['color'], 5),
		heading: pick(['h1', 'h2'], ['color'], 5),
		navigation: pick(['nav', '[role="navigation"]', 'header'],
			['background-color', 'color'], 5),
	};
})()`
